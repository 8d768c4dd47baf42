// Package serial provides an in-memory stand-in for a serial port. Everything
// written to it is kept, and reads return nothing.
package serial

import (
	"bytes"
	"sync"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{
	"pkg": "fake/serial",
})

type FakeSerial struct {
	mu      sync.Mutex
	written bytes.Buffer
	writes  int
	closed  bool

	// Err, if set, is returned by every Write. Nothing is recorded.
	Err error
}

func (s *FakeSerial) Read(p []byte) (n int, err error) {
	logger.Debugf("read %d bytes", len(p))
	return 0, nil
}

func (s *FakeSerial) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}

	logger.Debugf("write: %v", p)
	s.written.Write(p)
	s.writes++
	return len(p), nil
}

func (s *FakeSerial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debugf("close")
	s.closed = true
	return nil
}

// Bytes returns a copy of everything written so far.
func (s *FakeSerial) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.written.Bytes()...)
}

// Writes returns the number of calls to Write.
func (s *FakeSerial) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *FakeSerial) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Reset forgets everything written so far.
func (s *FakeSerial) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written.Reset()
	s.writes = 0
}
