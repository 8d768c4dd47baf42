package robot

import (
	"context"

	"github.com/adammck/spiderbot/command"
	"github.com/adammck/spiderbot/components/legs"
	"github.com/adammck/spiderbot/config"
	"github.com/adammck/spiderbot/kinematics"
	"github.com/adammck/spiderbot/motion"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "robot",
})

// Robot wires the sequencer to the executor, and runs commands against them.
type Robot struct {
	seq    *legs.Sequencer
	exec   *motion.Executor
	queue  chan motion.Waypoint
	angles chan motion.Angles
}

// New creates a robot which moves the given actuators. Nothing moves until Run
// is called.
func New(cfg config.Config, act motion.Actuators, clk clock.Clock) *Robot {
	solver := kinematics.NewSolver(cfg.Geometry)
	geo := legs.NewGeometry(cfg.Geometry, cfg.Speeds)
	log.WithFields(geo.Fields()).Info("geometry")
	sig := motion.NewSignal()

	r := &Robot{
		queue:  motion.NewQueue(cfg.Timing.QueueSize),
		angles: make(chan motion.Angles, 1),
	}

	r.exec = motion.NewExecutor(solver, act, clk, cfg.Timing.Tick, sig)
	r.seq = legs.New(geo, solver, r.queue, r.angles, sig, clk, cfg.Timing)
	return r
}

func (r *Robot) Sequencer() *legs.Sequencer {
	return r.seq
}

// Run starts the executor, moves the legs to the boot position, and then runs
// each command received, one at a time, until the context is cancelled or the
// channel is closed. Cancelling the context abandons the current movement.
func (r *Robot) Run(ctx context.Context, commands <-chan command.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := r.exec.Run(ctx, r.queue, r.angles)
		if ctx.Err() != nil {
			return nil
		}

		return errors.Wrap(err, "executor")
	})

	g.Go(func() error {
		defer cancel()
		return r.dispatch(ctx, commands)
	})

	return g.Wait()
}

func (r *Robot) dispatch(ctx context.Context, commands <-chan command.Command) error {
	err := r.seq.Init(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return errors.Wrap(err, "initializing legs")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd, ok := <-commands:
			if !ok {
				log.Info("no more commands")
				return nil
			}

			err := r.Do(ctx, cmd)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				log.Warnf("%s (while running %s)", err, cmd)
			}
		}
	}
}

// Do runs a single command, and blocks until the movement is finished.
func (r *Robot) Do(ctx context.Context, cmd command.Command) error {
	log.Infof("running: %s", cmd)

	switch c := cmd.(type) {
	case command.Sit:
		return r.seq.Sit(ctx)

	case command.Stand:
		return r.seq.Stand(ctx)

	case command.Calibrate:
		return r.seq.Calibrate(ctx)

	case command.Test:
		return r.seq.DoTest(ctx)

	case command.StepForward:
		return r.seq.StepForward(ctx, c.Count)

	case command.TurnLeft:
		return r.seq.TurnLeft(ctx, c.Count)

	case command.TurnRight:
		return r.seq.TurnRight(ctx, c.Count)

	case command.Wave:
		return r.seq.Wave(ctx, c.Count)

	case command.SetAngles:
		return r.seq.SetAngles(ctx, c.Angles)

	case command.Close:
		// The server closes the connection; there's nothing to move.
		return nil

	default:
		return errors.Errorf("unknown command: %T", cmd)
	}
}
