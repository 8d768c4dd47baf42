package legs

import (
	"context"
	"sync"
	"time"

	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/components/legs/gait"
	"github.com/adammck/spiderbot/config"
	"github.com/adammck/spiderbot/kinematics"
	"github.com/adammck/spiderbot/math3d"
	"github.com/adammck/spiderbot/motion"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type State string

const (
	sIdle        State = "sIdle"
	sSitting     State = "sSitting"
	sStanding    State = "sStanding"
	sStepping    State = "sStepping"
	sTurning     State = "sTurning"
	sWaving      State = "sWaving"
	sCalibrating State = "sCalibrating"
	sTesting     State = "sTesting"
	sPosed       State = "sPosed"

	// The number of times each movement is repeated by DoTest.
	testRepeats = 5
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "legs",
})

// Sequencer turns movements into waypoints, and sends them to the executor
// one at a time. Every method blocks until the movement is finished.
//
// The sequencer owns the positions of the feet. Current is where they were
// when the last commit finished; Expected and Velocity are the commit being
// built. They're only changed by the goroutine running the movements, but can
// be read from any.
type Sequencer struct {
	geo    Geometry
	solver kinematics.Solver

	out    chan<- motion.Waypoint
	angles chan<- motion.Angles
	signal *motion.Signal

	clock      clock.Clock
	timeout    time.Duration
	testPause  time.Duration
	testFinish time.Duration

	// Set when the last waypoint timed out, and so may still finish and raise
	// the signal. Only touched by the goroutine running the movements.
	late bool

	mu       sync.Mutex
	state    State
	current  spiderbot.Positions
	expected spiderbot.Positions
	velocity spiderbot.Positions
}

func New(geo Geometry, solver kinematics.Solver, out chan<- motion.Waypoint, angles chan<- motion.Angles, sig *motion.Signal, clk clock.Clock, t config.Timing) *Sequencer {
	return &Sequencer{
		geo:        geo,
		solver:     solver,
		out:        out,
		angles:     angles,
		signal:     sig,
		clock:      clk,
		timeout:    t.CommitTimeout,
		testPause:  t.TestPause,
		testFinish: t.TestFinish,
		state:      sIdle,
	}
}

func (s *Sequencer) SetState(st State) {
	log.Infof("state=%v", st)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) Current() spiderbot.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Sequencer) Expected() spiderbot.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expected
}

func (s *Sequencer) Velocity() spiderbot.Positions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.velocity
}

// SetSite sets the position which a foot should move to in the next commit,
// and the speed to move it at. Any coordinate may be spiderbot.Keep, to leave
// that axis where it is. The foot moves in a straight line; the velocity of
// each axis is proportional to how far it has to go.
func (s *Sequencer) SetSite(leg spiderbot.Leg, x, y, z, speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.At(leg)
	exp := s.expected.At(leg)
	var delta math3d.Vector3

	for axis, c := range [3]float64{x, y, z} {
		if spiderbot.IsKeep(c) {
			continue
		}

		delta.SetAxis(axis, c-cur.Axis(axis))
		exp.SetAxis(axis, c)
	}

	s.expected.Set(leg, exp)
	s.velocity.Set(leg, delta.Unit().MultiplyByScalar(speed*s.geo.SpeedMultiple))
}

// Commit sends the pending positions to the executor, and waits for them to be
// reached. If they are, they become the current positions. If they aren't
// reached before the timeout, the current positions are left alone and
// motion.ErrTimeout is returned; the caller should carry on regardless.
//
// If the previous waypoint timed out, Commit first waits (up to the timeout
// again) for it to finish, so that its completion isn't mistaken for this one.
func (s *Sequencer) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.settle(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	w := motion.Waypoint{
		Current:  s.current,
		Expected: s.expected,
		Velocity: s.velocity,
	}
	s.mu.Unlock()

	// Drop any completion which nobody waited for.
	s.signal.Reset()

	t := s.clock.Timer(s.timeout)
	defer t.Stop()

	select {
	case s.out <- w:
	case <-t.C:
		log.Errorf("timed out after %s sending waypoint", s.timeout)
		return errors.Wrap(motion.ErrTimeout, "sending waypoint")
	case <-ctx.Done():
		return ctx.Err()
	}

	err = s.signal.Wait(ctx, s.clock, s.timeout)
	if err == motion.ErrTimeout {
		log.Errorf("timed out after %s waiting for legs to reach %s", s.timeout, w.Expected)
		s.late = true
		return errors.Wrap(err, "waiting for legs")
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = s.expected
	s.mu.Unlock()

	s.debugPositions()
	return nil
}

// settle waits for a waypoint which timed out to finish. If it still doesn't,
// the executor is assumed to have dropped it.
func (s *Sequencer) settle(ctx context.Context) error {
	if !s.late {
		return nil
	}

	err := s.signal.Wait(ctx, s.clock, s.timeout)
	if err == motion.ErrTimeout {
		log.Warnf("previous waypoint still not finished after another %s", s.timeout)
	} else if err != nil {
		return err
	}

	s.late = false
	return nil
}

func (s *Sequencer) debugPositions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Debugf("current=%s velocity=%s", s.current, s.velocity)
}

// run commits each step of the gait in turn. Timeouts have already been logged
// by Commit, and don't stop the gait.
func (s *Sequencer) run(ctx context.Context, g gait.Gait) error {
	for _, step := range g {
		log.Debugf("%s at speed %0.1f", step.Name, step.Speed)

		for _, site := range step.Sites {
			s.SetSite(site.Leg, site.X, site.Y, site.Z, step.Speed)
		}

		err := s.Commit(ctx)
		if err != nil && errors.Cause(err) != motion.ErrTimeout {
			return err
		}
	}

	return nil
}

// phase returns the phase of a repeating gait, from the current position of
// the reference leg.
func (s *Sequencer) phase(ref spiderbot.Leg) gait.Phase {
	return gait.PhaseOf(s.Current().At(ref).Y, s.geo.Params)
}

// Init moves every foot to the boot position. The feet are assumed to already
// be there, so the first commit only tells the executor where they are.
func (s *Sequencer) Init(ctx context.Context) error {
	for _, step := range gait.Boot(s.geo.Params) {
		for _, site := range step.Sites {
			s.SetSite(site.Leg, site.X, site.Y, site.Z, step.Speed)
		}
	}

	s.mu.Lock()
	s.current = s.expected
	s.velocity = spiderbot.Positions{}
	s.mu.Unlock()

	err := s.Commit(ctx)
	if err != nil && errors.Cause(err) != motion.ErrTimeout {
		return err
	}

	log.Info("initialized")
	s.SetState(sSitting)
	return nil
}

func (s *Sequencer) Sit(ctx context.Context) error {
	s.SetState(sSitting)
	return s.run(ctx, gait.Sit(s.geo.Params))
}

func (s *Sequencer) Stand(ctx context.Context) error {
	s.SetState(sStanding)
	return s.run(ctx, gait.Stand(s.geo.Params))
}

// Calibrate straightens every leg, for aligning the servo horns.
func (s *Sequencer) Calibrate(ctx context.Context) error {
	s.SetState(sCalibrating)
	return s.run(ctx, gait.Calibrate(s.geo.Params))
}

func (s *Sequencer) StepForward(ctx context.Context, times int) error {
	return s.repeat(ctx, sStepping, times, spiderbot.FrontRight, gait.StepForward)
}

func (s *Sequencer) TurnLeft(ctx context.Context, times int) error {
	return s.repeat(ctx, sTurning, times, spiderbot.BottomRight, gait.TurnLeft)
}

func (s *Sequencer) TurnRight(ctx context.Context, times int) error {
	return s.repeat(ctx, sTurning, times, spiderbot.FrontRight, gait.TurnRight)
}

// repeat runs a mirrored gait the given number of times. The phase is picked
// at the start of each repetition, so consecutive calls alternate too.
func (s *Sequencer) repeat(ctx context.Context, st State, times int, ref spiderbot.Leg, f func(gait.Params, gait.Phase) gait.Gait) error {
	s.SetState(st)

	for i := 0; i < times; i++ {
		phase := s.phase(ref)
		log.Debugf("%s %d/%d: %s is %s", st, i+1, times, ref, phase)

		err := s.run(ctx, f(s.geo.Params, phase))
		if err != nil {
			return err
		}
	}

	s.SetState(sStanding)
	return nil
}

// Wave shifts the body away from one of the front legs, waves it the given
// number of times, and then puts everything back.
func (s *Sequencer) Wave(ctx context.Context, times int) error {
	s.SetState(sWaving)

	leg, dir := gait.WaveLeg(s.phase(spiderbot.BottomRight))
	shift := dir * s.geo.BodyShift

	err := s.bodyShift(ctx, shift)
	if err != nil {
		return err
	}

	saved := s.Current().At(leg)

	for i := 0; i < times; i++ {
		err = s.run(ctx, gait.WaveLift(s.geo.Params, leg))
		if err != nil {
			return err
		}
	}

	s.SetSite(leg, saved.X, saved.Y, saved.Z, s.geo.BodyMoveSpeed)
	err = s.Commit(ctx)
	if err != nil && errors.Cause(err) != motion.ErrTimeout {
		return err
	}

	err = s.bodyShift(ctx, -shift)
	if err != nil {
		return err
	}

	s.SetState(sStanding)
	return nil
}

// BodyLeft moves the body left by d, keeping the feet where they are.
func (s *Sequencer) BodyLeft(ctx context.Context, d float64) error {
	return s.bodyShift(ctx, d)
}

// BodyRight moves the body right by d, keeping the feet where they are.
func (s *Sequencer) BodyRight(ctx context.Context, d float64) error {
	return s.bodyShift(ctx, -d)
}

func (s *Sequencer) bodyShift(ctx context.Context, dx float64) error {
	return s.run(ctx, gait.Gait{gait.BodyShift(s.geo.Params, s.Current(), dx)})
}

// SetAngles moves every servo directly to the given angles, indexed by leg
// then joint, bypassing the gaits. Afterwards, the feet are assumed to be
// wherever those angles put them.
func (s *Sequencer) SetAngles(ctx context.Context, aa motion.Angles) error {
	s.SetState(sPosed)

	err := s.settle(ctx)
	if err != nil {
		return err
	}

	s.signal.Reset()

	select {
	case s.angles <- aa:
	case <-ctx.Done():
		return ctx.Err()
	}

	err = s.signal.Wait(ctx, s.clock, s.timeout)
	if err == motion.ErrTimeout {
		log.Errorf("timed out after %s setting angles", s.timeout)
		s.late = true
		return nil
	}
	if err != nil {
		return err
	}

	var pos spiderbot.Positions
	for _, leg := range spiderbot.Legs {
		a := aa[leg.Index()]
		alpha, beta, gamma := kinematics.ServoToPolar(leg, a[spiderbot.Femur], a[spiderbot.Tibia], a[spiderbot.Coxa])
		x, y, z := s.solver.PolarToCartesian(alpha, beta, gamma)
		pos.Set(leg, math3d.Vector3{X: x, Y: y, Z: z})
	}

	log.Infof("angles put feet at %s", pos)

	s.mu.Lock()
	s.current = pos
	s.expected = pos
	s.velocity = spiderbot.Positions{}
	s.mu.Unlock()

	return nil
}

// DoTest runs through every movement, pausing between them.
func (s *Sequencer) DoTest(ctx context.Context) error {
	s.SetState(sTesting)

	steps := []struct {
		name string
		f    func(context.Context) error
	}{
		{"stand", s.Stand},
		{"step forward", func(ctx context.Context) error { return s.StepForward(ctx, testRepeats) }},
		{"turn left", func(ctx context.Context) error { return s.TurnLeft(ctx, testRepeats) }},
		{"turn right", func(ctx context.Context) error { return s.TurnRight(ctx, testRepeats) }},
		{"wave", func(ctx context.Context) error { return s.Wave(ctx, testRepeats) }},
	}

	for _, step := range steps {
		log.Infof("test: %s", step.name)

		err := step.f(ctx)
		if err != nil {
			return err
		}

		err = s.pause(ctx, s.testPause)
		if err != nil {
			return err
		}
	}

	log.Info("test: sit")
	err := s.Sit(ctx)
	if err != nil {
		return err
	}

	return s.pause(ctx, s.testFinish)
}

func (s *Sequencer) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := s.clock.Timer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
