// Package motion moves the feet from where they are to where the gait wants
// them, one tick at a time.
package motion

import (
	"math"

	"github.com/adammck/spiderbot"
)

// Waypoint is a snapshot of a single commit: where each foot is, where it
// should be, and how far it should move (on each axis) per tick. It's always
// passed by value, so the executor can mutate its copy freely.
type Waypoint struct {
	Current  spiderbot.Positions
	Expected spiderbot.Positions
	Velocity spiderbot.Positions
}

// Step advances every axis of every foot by one tick, and returns true if all
// of them have reached their expected positions.
//
// An axis which is within one velocity of its target snaps exactly onto it,
// rather than overshooting. An axis with no velocity which is somehow not at
// its target also snaps, so a waypoint always converges.
func (w *Waypoint) Step() bool {
	for i := range w.Current {
		for axis := 0; axis < 3; axis++ {
			cur := w.Current[i].Axis(axis)
			exp := w.Expected[i].Axis(axis)
			v := w.Velocity[i].Axis(axis)

			if v != 0 && math.Abs(cur-exp) >= math.Abs(v) {
				cur += v
			} else {
				cur = exp
			}

			w.Current[i].SetAxis(axis, cur)
		}
	}

	return w.Done()
}

// Done returns true if every foot is exactly at its expected position.
func (w *Waypoint) Done() bool {
	return w.Current.Equal(w.Expected)
}

// NewQueue returns the channel which carries waypoints from the sequencer to
// the executor.
func NewQueue(capacity int) chan Waypoint {
	return make(chan Waypoint, capacity)
}
