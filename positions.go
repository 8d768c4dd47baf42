package spiderbot

import (
	"fmt"
	"strings"

	"github.com/adammck/spiderbot/math3d"
)

// Keep may be passed in place of any coordinate to mean "leave this axis
// where it is". It must never be a reachable coordinate; see
// kinematics.Solver.Reach.
const Keep = 255.0

// IsKeep returns true if v is the Keep sentinel.
func IsKeep(v float64) bool {
	return v == Keep
}

// Positions holds one vector per leg, in the coordinate space of that leg's
// coxa joint. The same type is used for actual positions, target positions,
// and per-tick velocities.
type Positions [NumLegs]math3d.Vector3

func (p Positions) At(leg Leg) math3d.Vector3 {
	return p[leg.Index()]
}

func (p *Positions) Set(leg Leg, v math3d.Vector3) {
	p[leg.Index()] = v
}

// Equal returns true if every coordinate of every leg is exactly equal.
func (p Positions) Equal(pp Positions) bool {
	for i := range p {
		if p[i] != pp[i] {
			return false
		}
	}

	return true
}

func (p Positions) String() string {
	parts := make([]string, 0, NumLegs)
	for _, leg := range Legs {
		parts = append(parts, fmt.Sprintf("%s=%s", leg, p.At(leg)))
	}

	return "&Pos{" + strings.Join(parts, " ") + "}"
}
