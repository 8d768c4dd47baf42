// Package gait describes every movement as a table of steps. A step is a set
// of foot positions which are committed together; the feet all start and stop
// moving at the same time, and the next step doesn't start until they have
// all arrived.
package gait

import (
	"fmt"

	"github.com/adammck/spiderbot"
)

// Params holds the positions and speeds which the gaits are built from.
type Params struct {
	XDefault float64
	XOffset  float64
	YStart   float64
	YStep    float64

	ZDefault float64
	ZUp      float64
	ZBoot    float64
	ZWave    float64

	// Foot positions for turning on the spot, which rotate the body around
	// its center.
	TurnX0 float64
	TurnY0 float64
	TurnX1 float64
	TurnY1 float64

	MoveSpeed      float64
	SpotTurnSpeed  float64
	LegMoveSpeed   float64
	BodyMoveSpeed  float64
	StandSeatSpeed float64
}

// Site is the position which a single foot should move to. Any coordinate may
// be spiderbot.Keep, to leave that axis alone.
type Site struct {
	Leg     spiderbot.Leg
	X, Y, Z float64
}

func (s Site) String() string {
	return fmt.Sprintf("%s->(%s, %s, %s)", s.Leg, coord(s.X), coord(s.Y), coord(s.Z))
}

func coord(v float64) string {
	if spiderbot.IsKeep(v) {
		return "keep"
	}

	return fmt.Sprintf("%0.2f", v)
}

// Step is a single commit.
type Step struct {
	Name  string
	Speed float64
	Sites []Site
}

// Gait is a sequence of steps.
type Gait []Step

// Length returns the number of commits needed to run the whole gait.
func (g Gait) Length() int {
	return len(g)
}

// Phase selects which of two mirrored sequences a repeating gait runs next.
// It's decided by whether the reference leg is back at YStart.
type Phase int

const (
	Retracted Phase = iota
	Extended
)

func (p Phase) String() string {
	switch p {
	case Retracted:
		return "retracted"
	case Extended:
		return "extended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// PhaseOf returns the phase for a reference leg at the given Y coordinate.
// The comparison is exact; a leg which has been committed to YStart is at
// exactly YStart.
func PhaseOf(y float64, p Params) Phase {
	if y == p.YStart {
		return Retracted
	}

	return Extended
}
