package command

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "command",
})

// QueueSize is the capacity of the channel which commands are forwarded on.
const QueueSize = 3

// NewQueue returns a channel suitable for passing to Serve.
func NewQueue() chan Command {
	return make(chan Command, QueueSize)
}

// Server accepts connections, and reads one command per line from each. Each
// line is answered with "ok" or "error: ...". Connections are handled one at a
// time, in the order they arrive.
type Server struct {
	ln net.Listener
}

func NewServer(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	return &Server{ln: ln}, nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until the context is cancelled, forwarding every
// valid command to out. It blocks while out is full.
func (s *Server) Serve(ctx context.Context, out chan<- Command) error {
	log.Infof("listening on %s", s.ln.Addr())

	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return errors.Wrap(err, "accepting connection")
		}

		s.handle(ctx, conn, out)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn, out chan<- Command) {
	l := log.WithField("remote", conn.RemoteAddr().String())
	l.Info("client connected")

	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	// Unblock the scanner if we're shutting down.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Text()

		cmd, err := Parse(line)
		if err != nil {
			l.Warnf("%s (while parsing %q)", err, line)
			fmt.Fprintf(conn, "error: %s\n", err)
			continue
		}

		if _, ok := cmd.(Close); ok {
			fmt.Fprintln(conn, "bye")
			l.Info("client closed connection")
			return
		}

		select {
		case out <- cmd:
		case <-ctx.Done():
			return
		}

		l.Infof("received %s", cmd)
		fmt.Fprintln(conn, "ok")
	}

	if err := sc.Err(); err != nil && ctx.Err() == nil {
		l.Errorf("%s (while reading)", err)
		return
	}

	l.Info("client disconnected")
}
