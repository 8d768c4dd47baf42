package motion

import (
	"context"
	"time"

	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/kinematics"
	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "motion",
})

// Angles holds a raw angle (in degrees) for every servo, indexed by leg then
// joint.
type Angles [spiderbot.NumLegs][spiderbot.NumJoints]float64

// Actuators is whatever moves the servos.
type Actuators interface {

	// SetLegAngles moves the three servos of a leg. The angles are in the
	// order which kinematics.PolarToServo returns them: a is the femur (hip
	// pitch), b is the tibia (knee), c is the coxa (hip yaw). Errors for more
	// than one joint may be combined with multierr.
	SetLegAngles(leg spiderbot.Leg, a, b, c float64) error

	// Sync calls f, which will call SetLegAngles for some legs, and then makes
	// all of those moves happen at once.
	Sync(f func()) error
}

// Executor receives waypoints and moves the actual servos towards them at a
// fixed rate. It raises the signal each time a waypoint (or raw angle
// command) is finished.
type Executor struct {
	solver    kinematics.Solver
	actuators Actuators
	clock     clock.Clock
	tick      time.Duration
	signal    *Signal
}

func NewExecutor(s kinematics.Solver, a Actuators, clk clock.Clock, tick time.Duration, sig *Signal) *Executor {
	return &Executor{
		solver:    s,
		actuators: a,
		clock:     clk,
		tick:      tick,
		signal:    sig,
	}
}

// Run processes waypoints and raw angle commands, one at a time, in the order
// they arrive, until the context is cancelled or the waypoint channel is
// closed.
func (e *Executor) Run(ctx context.Context, in <-chan Waypoint, angles <-chan Angles) error {
	log.Infof("running at %s per tick", e.tick)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case w, ok := <-in:
			if !ok {
				log.Info("waypoint channel closed")
				return nil
			}

			err := e.execute(ctx, w)
			if err != nil {
				return err
			}

			e.signal.Raise()

		case a, ok := <-angles:
			if !ok {
				angles = nil
				continue
			}

			e.writeAngles(a)
			e.signal.Raise()
		}
	}
}

// execute moves the feet once immediately, then once per tick, until they
// reach their expected positions.
func (e *Executor) execute(ctx context.Context, w Waypoint) error {
	t := e.clock.Ticker(e.tick)
	defer t.Stop()

	start := e.clock.Now()
	ticks := 0

	for {
		done := w.Step()
		e.writePositions(w.Current)
		ticks++

		if done {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	log.Debugf("converged after %d ticks (%s)", ticks, e.clock.Since(start))
	return nil
}

func (e *Executor) writePositions(p spiderbot.Positions) {
	e.sync(func() {
		for _, leg := range spiderbot.Legs {
			v := p.At(leg)
			a, b, c := e.solver.Solve(leg, v.X, v.Y, v.Z)
			e.setLeg(leg, a, b, c)
		}
	})
}

func (e *Executor) writeAngles(aa Angles) {
	e.sync(func() {
		for _, leg := range spiderbot.Legs {
			a := aa[leg.Index()]
			e.setLeg(leg, a[spiderbot.Femur], a[spiderbot.Tibia], a[spiderbot.Coxa])
		}
	})
}

func (e *Executor) setLeg(leg spiderbot.Leg, a, b, c float64) {
	err := e.actuators.SetLegAngles(leg, a, b, c)
	for _, err := range multierr.Errors(err) {
		log.WithField("leg", leg).Errorf("%s (while setting angles)", err)
	}
}

func (e *Executor) sync(f func()) {
	err := e.actuators.Sync(f)
	if err != nil {
		log.Errorf("%s (while syncing)", err)
	}
}
