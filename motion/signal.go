package motion

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// ErrTimeout is returned when a signal isn't raised in time.
var ErrTimeout = errors.New("timed out")

// Signal is a single-slot notification with no payload. Raising it when it's
// already raised is a no-op, so a waiter only ever sees the latest one.
type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal {
	return &Signal{
		ch: make(chan struct{}, 1),
	}
}

// Raise sets the signal, waking the waiter if there is one. It never blocks.
func (s *Signal) Raise() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Reset clears the signal if it was raised and nobody consumed it.
func (s *Signal) Reset() {
	select {
	case <-s.ch:
	default:
	}
}

// Wait blocks until the signal is raised, the timeout (measured by the given
// clock) expires, or the context is cancelled. It returns nil if the signal
// was raised, and ErrTimeout if the timeout expired.
func (s *Signal) Wait(ctx context.Context, clk clock.Clock, timeout time.Duration) error {
	t := clk.Timer(timeout)
	defer t.Stop()

	select {
	case <-s.ch:
		return nil
	case <-t.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
