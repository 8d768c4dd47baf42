package servos

import (
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// The compact protocol of the Pololu Maestro family of serial servo
// controllers.
const cmdSetTarget = 0x84

// Targets are in quarter-microseconds, in two seven-bit bytes.
const maxTarget = 0x3fff

// maestro writes targets to a pulse controller. While batching, writes are
// collected and sent to the port in one go by flush.
type maestro struct {
	mu       sync.Mutex
	port     io.Writer
	batching bool
	buf      bytes.Buffer
}

func newMaestro(port io.Writer) *maestro {
	return &maestro{port: port}
}

// SetTarget sets the pulse width of a channel, in microseconds. Zero turns the
// channel off.
func (m *maestro) SetTarget(channel uint8, us uint) error {
	t := us * 4
	if t > maxTarget {
		return errors.Errorf("pulse width %dus out of range", us)
	}

	cmd := []byte{cmdSetTarget, channel, byte(t & 0x7f), byte((t >> 7) & 0x7f)}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.batching {
		m.buf.Write(cmd)
		return nil
	}

	_, err := m.port.Write(cmd)
	return err
}

func (m *maestro) batch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batching = true
}

func (m *maestro) flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batching = false
	if m.buf.Len() == 0 {
		return nil
	}

	_, err := m.port.Write(m.buf.Bytes())
	m.buf.Reset()
	return errors.Wrap(err, "flushing targets")
}
