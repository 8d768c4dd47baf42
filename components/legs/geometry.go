package legs

import (
	"math"

	"github.com/adammck/spiderbot/components/legs/gait"
	"github.com/adammck/spiderbot/config"
	"github.com/sirupsen/logrus"
)

// Geometry is everything the sequencer needs to know about the shape of the
// robot, computed once at startup.
type Geometry struct {
	gait.Params

	// Applied to every speed.
	SpeedMultiple float64

	// How far the body shifts sideways to lift a front leg off the ground.
	BodyShift float64

	// Intermediate values of the turn positions, only kept to be logged.
	TempA     float64
	TempB     float64
	TempC     float64
	TempAlpha float64
}

// NewGeometry computes the turn positions from the leg positions. The turns
// rotate the body around its center, so the diagonal from each foot to the
// opposite foot has to stay the same length.
func NewGeometry(g config.Geometry, s config.Speeds) Geometry {
	side := g.SideLength
	w := 2*g.XDefault + side

	a := math.Sqrt(w*w + g.YStep*g.YStep)
	b := 2*(g.YStart+g.YStep) + side
	c := math.Sqrt(w*w + math.Pow(2*g.YStart+g.YStep+side, 2))
	alpha := math.Acos((a*a + b*b - c*c) / 2 / a / b)

	x1 := (a - side) / 2
	y1 := (g.YStart + g.YStep) / 2
	x0 := x1 - b*math.Cos(alpha)
	y0 := b*math.Sin(alpha) - y1 - side

	return Geometry{
		Params: gait.Params{
			XDefault: g.XDefault,
			XOffset:  g.XOffset,
			YStart:   g.YStart,
			YStep:    g.YStep,
			ZDefault: g.ZDefault,
			ZUp:      g.ZUp,
			ZBoot:    g.ZBoot,
			ZWave:    g.ZWave,

			TurnX0: x0,
			TurnY0: y0,
			TurnX1: x1,
			TurnY1: y1,

			MoveSpeed:      s.Move,
			SpotTurnSpeed:  s.SpotTurn,
			LegMoveSpeed:   s.LegMove,
			BodyMoveSpeed:  s.BodyMove,
			StandSeatSpeed: s.StandSeat,
		},
		SpeedMultiple: s.Multiple,
		BodyShift:     g.BodyShift,
		TempA:         a,
		TempB:         b,
		TempC:         c,
		TempAlpha:     alpha,
	}
}

// Fields returns the computed values, for logging at startup.
func (g Geometry) Fields() logrus.Fields {
	return logrus.Fields{
		"temp_a":     round2(g.TempA),
		"temp_b":     round2(g.TempB),
		"temp_c":     round2(g.TempC),
		"temp_alpha": round2(g.TempAlpha),
		"turn_x0":    round2(g.TurnX0),
		"turn_y0":    round2(g.TurnY0),
		"turn_x1":    round2(g.TurnX1),
		"turn_y1":    round2(g.TurnY1),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
