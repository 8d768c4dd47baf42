package spiderbot

import (
	"fmt"

	"github.com/pkg/errors"
)

// Leg identifies one of the four legs. The values double as indices into the
// position and servo arrays, so they must stay dense and start at zero.
type Leg int

const (
	FrontLeft Leg = iota
	BottomLeft
	FrontRight
	BottomRight
)

// NumLegs is the number of legs on the robot. This is not expected to change.
const NumLegs = 4

// Legs lists every leg in index order.
var Legs = [NumLegs]Leg{FrontLeft, BottomLeft, FrontRight, BottomRight}

var ErrInvalidLeg = errors.New("invalid leg")

// LegFromIndex returns the leg with the given array index.
func LegFromIndex(i int) (Leg, error) {
	if i < 0 || i >= NumLegs {
		return 0, errors.Wrapf(ErrInvalidLeg, "index %d", i)
	}

	return Leg(i), nil
}

func (l Leg) Index() int {
	return int(l)
}

func (l Leg) String() string {
	switch l {
	case FrontLeft:
		return "front left"
	case BottomLeft:
		return "bottom left"
	case FrontRight:
		return "front right"
	case BottomRight:
		return "bottom right"
	default:
		return fmt.Sprintf("leg(%d)", int(l))
	}
}

// Left returns true for the two legs on the left side of the body. Shifting
// the body sideways moves the left feet and the right feet in opposite
// directions.
func (l Leg) Left() bool {
	return l == FrontLeft || l == BottomLeft
}

// Joint identifies one of the three servos on each leg.
type Joint int

const (
	Coxa Joint = iota
	Femur
	Tibia
)

const NumJoints = 3

var Joints = [NumJoints]Joint{Coxa, Femur, Tibia}

func (j Joint) Index() int {
	return int(j)
}

func (j Joint) String() string {
	switch j {
	case Coxa:
		return "coxa"
	case Femur:
		return "femur"
	case Tibia:
		return "tibia"
	default:
		return fmt.Sprintf("joint(%d)", int(j))
	}
}
