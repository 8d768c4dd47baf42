package controller

import (
	"context"
	"io"
	"time"

	"github.com/adammck/sixaxis"
	"github.com/adammck/spiderbot/command"
	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

const (

	// How far the right stick must be pushed (out of 127) to turn.
	stickThreshold = 64

	// How often the controller state is checked.
	interval = time.Second / 60
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "controller",
})

// Buttons is the part of the controller state which we care about.
type Buttons struct {
	Up     bool
	Down   bool
	Start  bool
	Square bool
	Left   bool
	Right  bool
}

// Controller turns button presses on a sixaxis into commands. Holding a button
// down only sends one command.
type Controller struct {
	sa *sixaxis.SA

	up     Latch
	down   Latch
	start  Latch
	square Latch
	left   Latch
	right  Latch
}

func New(r io.Reader) *Controller {
	return &Controller{
		sa: sixaxis.New(r),
	}
}

// Boot starts reading from the controller.
func (c *Controller) Boot() error {
	go c.sa.Run()
	return nil
}

// Buttons returns the current state of the controller.
func (c *Controller) Buttons() Buttons {
	return Buttons{
		Up:     c.sa.Up > 0,
		Down:   c.sa.Down > 0,
		Start:  c.sa.Start,
		Square: c.sa.Square > 0,
		Left:   c.sa.RightStick.X < -stickThreshold,
		Right:  c.sa.RightStick.X > stickThreshold,
	}
}

// Update returns the commands for any buttons which have been pressed since
// the last call.
func (c *Controller) Update(b Buttons) []command.Command {
	var cmds []command.Command

	if c.up.Run(b.Up) {
		cmds = append(cmds, command.StepForward{Count: 1})
	}

	if c.down.Run(b.Down) {
		cmds = append(cmds, command.Sit{})
	}

	if c.start.Run(b.Start) {
		cmds = append(cmds, command.Stand{})
	}

	if c.square.Run(b.Square) {
		cmds = append(cmds, command.Wave{Count: 1})
	}

	if c.left.Run(b.Left) {
		cmds = append(cmds, command.TurnLeft{Count: 1})
	}

	if c.right.Run(b.Right) {
		cmds = append(cmds, command.TurnRight{Count: 1})
	}

	return cmds
}

func (c *Controller) Tick(now time.Time) []command.Command {
	return c.Update(c.Buttons())
}

// Run polls the controller until the context is cancelled, sending commands to
// out. Commands are dropped (with a warning) if out is full, so that button
// presses don't queue up behind a long movement.
func (c *Controller) Run(ctx context.Context, clk clock.Clock, out chan<- command.Command) error {
	t := clk.Ticker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-t.C:
			for _, cmd := range c.Tick(now) {
				select {
				case out <- cmd:
					log.Infof("pressed: %s", cmd)
				default:
					log.Warnf("busy, dropped: %s", cmd)
				}
			}
		}
	}
}
