package gait

import (
	"testing"

	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/math3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = Params{
	XDefault: 62,
	XOffset:  0,
	YStart:   0,
	YStep:    40,
	ZDefault: -50,
	ZUp:      -30,
	ZBoot:    -28,
	ZWave:    50,

	TurnX0: 33.69,
	TurnY0: 56.9,
	TurnX1: 64.03,
	TurnY1: 20,

	MoveSpeed:      1,
	SpotTurnSpeed:  4,
	LegMoveSpeed:   8,
	BodyMoveSpeed:  3,
	StandSeatSpeed: 1,
}

// apply returns the positions after every step of the gait has been reached.
func apply(pos spiderbot.Positions, g Gait) spiderbot.Positions {
	for _, s := range g {
		for _, site := range s.Sites {
			v := pos.At(site.Leg)
			for axis, c := range []float64{site.X, site.Y, site.Z} {
				if !spiderbot.IsKeep(c) {
					v.SetAxis(axis, c)
				}
			}
			pos.Set(site.Leg, v)
		}
	}

	return pos
}

func standing() spiderbot.Positions {
	return apply(spiderbot.Positions{}, append(Boot(params), Stand(params)...))
}

func TestBoot(t *testing.T) {
	g := Boot(params)
	require.Equal(t, 1, g.Length())
	require.Len(t, g[0].Sites, spiderbot.NumLegs)

	// Every leg exactly once.
	seen := map[spiderbot.Leg]bool{}
	for _, s := range g[0].Sites {
		assert.False(t, seen[s.Leg], "%s set twice", s.Leg)
		seen[s.Leg] = true
	}

	pos := apply(spiderbot.Positions{}, g)
	assert.Equal(t, math3d.Vector3{X: 62, Y: 40, Z: -28}, pos.At(spiderbot.FrontLeft))
	assert.Equal(t, math3d.Vector3{X: 62, Y: 40, Z: -28}, pos.At(spiderbot.BottomLeft))
	assert.Equal(t, math3d.Vector3{X: 62, Y: 0, Z: -28}, pos.At(spiderbot.FrontRight))
	assert.Equal(t, math3d.Vector3{X: 62, Y: 0, Z: -28}, pos.At(spiderbot.BottomRight))
}

func TestSitStand(t *testing.T) {
	pos := standing()
	for _, leg := range spiderbot.Legs {
		assert.Equal(t, -50.0, pos.At(leg).Z)
	}

	// Only the height changes.
	sat := apply(pos, Sit(params))
	for _, leg := range spiderbot.Legs {
		exp := pos.At(leg)
		exp.Z = -28
		assert.Equal(t, exp, sat.At(leg))
	}

	assert.Equal(t, 1.0, Sit(params)[0].Speed)
	assert.Equal(t, 1.0, Stand(params)[0].Speed)
}

func TestCalibrate(t *testing.T) {
	pos := apply(standing(), Calibrate(params))
	for _, leg := range spiderbot.Legs {
		assert.True(t, pos.At(leg).Zero())
	}
}

func TestPhaseOf(t *testing.T) {
	assert.Equal(t, Retracted, PhaseOf(0, params))
	assert.Equal(t, Extended, PhaseOf(40, params))
	assert.Equal(t, Extended, PhaseOf(0.001, params))
}

func TestLengths(t *testing.T) {
	for _, phase := range []Phase{Retracted, Extended} {
		assert.Equal(t, 7, StepForward(params, phase).Length(), "step forward %s", phase)
		assert.Equal(t, 7, TurnLeft(params, phase).Length(), "turn left %s", phase)
		assert.Equal(t, 7, TurnRight(params, phase).Length(), "turn right %s", phase)
	}

	assert.Equal(t, 2, WaveLift(params, spiderbot.FrontRight).Length())
}

func TestStepForward(t *testing.T) {
	pos := standing()
	fr := spiderbot.FrontRight

	require.Equal(t, Retracted, PhaseOf(pos.At(fr).Y, params))
	g := StepForward(params, Retracted)

	// The front right swings all the way forward before the body moves.
	assert.Equal(t, 80.0, apply(pos, g[:3]).At(fr).Y)
	assert.Equal(t, 8.0, g[0].Speed)
	assert.Equal(t, 3.0, g[3].Speed)

	pos = apply(pos, g)
	assert.Equal(t, 40.0, pos.At(fr).Y)
	assert.Equal(t, Extended, PhaseOf(pos.At(fr).Y, params))

	// All feet back on the ground.
	for _, leg := range spiderbot.Legs {
		assert.Equal(t, -50.0, pos.At(leg).Z, leg.String())
	}

	// And the next phase puts it back.
	pos = apply(pos, StepForward(params, Extended))
	assert.Equal(t, 0.0, pos.At(fr).Y)
	assert.Equal(t, standing(), pos)
}

func TestTurns(t *testing.T) {
	type eg struct {
		name string
		gait func(Params, Phase) Gait
		ref  spiderbot.Leg
	}

	examples := []eg{
		{"turn left", TurnLeft, spiderbot.BottomRight},
		{"turn right", TurnRight, spiderbot.FrontRight},
	}

	for _, x := range examples {
		pos := standing()
		require.Equal(t, Retracted, PhaseOf(pos.At(x.ref).Y, params), x.name)

		pos = apply(pos, x.gait(params, Retracted))
		assert.Equal(t, Extended, PhaseOf(pos.At(x.ref).Y, params), x.name)

		pos = apply(pos, x.gait(params, Extended))
		assert.Equal(t, Retracted, PhaseOf(pos.At(x.ref).Y, params), x.name)
		assert.Equal(t, standing(), pos, x.name)

		for _, s := range x.gait(params, Retracted) {
			assert.Equal(t, 4.0, s.Speed, x.name)
		}
	}
}

func TestOneFootUpAtATime(t *testing.T) {
	gaits := []Gait{}
	for _, phase := range []Phase{Retracted, Extended} {
		gaits = append(gaits, StepForward(params, phase), TurnLeft(params, phase), TurnRight(params, phase))
	}

	for _, g := range gaits {
		pos := standing()
		for _, s := range g {
			pos = apply(pos, Gait{s})

			up := 0
			for _, leg := range spiderbot.Legs {
				if pos.At(leg).Z != params.ZDefault {
					up++
				}
			}

			assert.True(t, up <= 1, "%s: %d feet up", s.Name, up)
		}
	}
}

func TestWaveLeg(t *testing.T) {
	leg, dir := WaveLeg(Retracted)
	assert.Equal(t, spiderbot.FrontRight, leg)
	assert.Equal(t, -1.0, dir)

	leg, dir = WaveLeg(Extended)
	assert.Equal(t, spiderbot.FrontLeft, leg)
	assert.Equal(t, 1.0, dir)

	g := WaveLift(params, spiderbot.FrontLeft)
	assert.Equal(t, Site{spiderbot.FrontLeft, 64.03, 20, 50}, g[0].Sites[0])
	assert.Equal(t, Site{spiderbot.FrontLeft, 33.69, 56.9, 50}, g[1].Sites[0])
}

func TestBodyShift(t *testing.T) {
	pos := standing()

	s := BodyShift(params, pos, 15)
	assert.Equal(t, "shift body left", s.Name)
	assert.Equal(t, 1.0, s.Speed)

	shifted := apply(pos, Gait{s})
	assert.Equal(t, 77.0, shifted.At(spiderbot.FrontLeft).X)
	assert.Equal(t, 77.0, shifted.At(spiderbot.BottomLeft).X)
	assert.Equal(t, 47.0, shifted.At(spiderbot.FrontRight).X)
	assert.Equal(t, 47.0, shifted.At(spiderbot.BottomRight).X)

	// Only X moves.
	for _, leg := range spiderbot.Legs {
		assert.Equal(t, pos.At(leg).Y, shifted.At(leg).Y)
		assert.Equal(t, pos.At(leg).Z, shifted.At(leg).Z)
	}

	back := apply(shifted, Gait{BodyShift(params, shifted, -15)})
	assert.Equal(t, pos, back)
}

func TestSiteString(t *testing.T) {
	s := Site{spiderbot.FrontLeft, 62, spiderbot.Keep, -50}
	assert.Equal(t, "front left->(62.00, keep, -50.00)", s.String())
}
