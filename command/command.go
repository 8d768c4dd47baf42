// Package command defines the movements which can be asked of the robot, and
// parses them from text.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/motion"
	"github.com/pkg/errors"
)

// ErrUnknownCommand is returned by Parse for anything it doesn't understand.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one of the types below. The set is closed.
type Command interface {
	fmt.Stringer
	command()
}

type Sit struct{}
type Stand struct{}
type Calibrate struct{}
type Test struct{}

// Close ends the connection it arrived on. It's never sent to the robot.
type Close struct{}

type StepForward struct{ Count int }
type TurnLeft struct{ Count int }
type TurnRight struct{ Count int }
type Wave struct{ Count int }

// SetAngles moves every servo directly, bypassing the gaits. The angles are in
// degrees, indexed by leg then joint.
type SetAngles struct {
	Angles motion.Angles
}

func (Sit) command() {}
func (Stand) command() {}
func (Calibrate) command() {}
func (Test) command() {}
func (Close) command() {}
func (StepForward) command() {}
func (TurnLeft) command() {}
func (TurnRight) command() {}
func (Wave) command() {}
func (SetAngles) command() {}

func (Sit) String() string { return "sit" }
func (Stand) String() string { return "stand" }
func (Calibrate) String() string { return "calibrate" }
func (Test) String() string { return "test" }
func (Close) String() string { return "close" }
func (c StepForward) String() string { return fmt.Sprintf("step forward %d", c.Count) }
func (c TurnLeft) String() string { return fmt.Sprintf("turn left %d", c.Count) }
func (c TurnRight) String() string { return fmt.Sprintf("turn right %d", c.Count) }
func (c Wave) String() string { return fmt.Sprintf("wave %d", c.Count) }
func (c SetAngles) String() string { return fmt.Sprintf("set angles %v", c.Angles) }

const (
	defaultCount = 1
	maxCount     = 255

	numAngles = spiderbot.NumLegs * spiderbot.NumJoints
)

// Parse reads a single command, which is a word optionally followed by
// arguments, separated by whitespace:
//
//	s        stand
//	r        sit (rest)
//	d [n]    step forward n times
//	tl [n]   turn left n times
//	tr [n]   turn right n times
//	w [n]    wave n times
//	c        calibrate
//	t        test
//	a a0 ... a11
//	         set all twelve servo angles, leg by leg
//	q        close the connection
//
// A missing or invalid count is treated as one.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.Wrap(ErrUnknownCommand, "empty line")
	}

	args := fields[1:]

	switch fields[0] {
	case "s":
		return Stand{}, nil
	case "r":
		return Sit{}, nil
	case "c":
		return Calibrate{}, nil
	case "t":
		return Test{}, nil
	case "q":
		return Close{}, nil
	case "d":
		return StepForward{count(args)}, nil
	case "tl":
		return TurnLeft{count(args)}, nil
	case "tr":
		return TurnRight{count(args)}, nil
	case "w":
		return Wave{count(args)}, nil
	case "a":
		return parseAngles(args)
	}

	return nil, errors.Wrapf(ErrUnknownCommand, "%q", fields[0])
}

func count(args []string) int {
	if len(args) == 0 {
		return defaultCount
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > maxCount {
		return defaultCount
	}

	return n
}

func parseAngles(args []string) (Command, error) {
	if len(args) != numAngles {
		return nil, errors.Errorf("set angles: want %d angles, got %d", numAngles, len(args))
	}

	var c SetAngles
	for i, s := range args {
		a, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "set angles: angle %d", i)
		}

		if a < 0 || a > 180 {
			return nil, errors.Errorf("set angles: angle %d (%s) out of range", i, s)
		}

		c.Angles[i/spiderbot.NumJoints][i%spiderbot.NumJoints] = a
	}

	return c, nil
}
