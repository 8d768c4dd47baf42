package gait

import (
	"github.com/adammck/spiderbot"
)

const keep = spiderbot.Keep

const (
	fl = spiderbot.FrontLeft
	bl = spiderbot.BottomLeft
	fr = spiderbot.FrontRight
	br = spiderbot.BottomRight
)

func step(name string, speed float64, sites ...Site) Step {
	return Step{Name: name, Speed: speed, Sites: sites}
}

// Boot is the position at power on: resting on the body, with the left feet
// forwards and the right feet back, ready to step with the front right.
func Boot(p Params) Gait {
	x, ys, yst, z := p.XDefault, p.YStart, p.YStep, p.ZBoot
	return Gait{
		step("boot", p.MoveSpeed,
			Site{fl, x - p.XOffset, ys + yst, z},
			Site{bl, x - p.XOffset, ys + yst, z},
			Site{fr, x + p.XOffset, ys, z},
			Site{br, x + p.XOffset, ys, z}),
	}
}

// Calibrate moves every foot to the coxa joint. That isn't reachable, so the
// legs end up straight, which is the position the servo horns are aligned in.
func Calibrate(p Params) Gait {
	return Gait{
		step("calibrate", p.MoveSpeed,
			Site{fl, 0, 0, 0},
			Site{bl, 0, 0, 0},
			Site{fr, 0, 0, 0},
			Site{br, 0, 0, 0}),
	}
}

// Sit lowers the body to the ground, without moving the feet horizontally.
func Sit(p Params) Gait {
	return Gait{height("sit", p.ZBoot, p.StandSeatSpeed)}
}

// Stand raises the body to walking height, without moving the feet
// horizontally.
func Stand(p Params) Gait {
	return Gait{height("stand", p.ZDefault, p.StandSeatSpeed)}
}

func height(name string, z, speed float64) Step {
	sites := make([]Site, 0, spiderbot.NumLegs)
	for _, leg := range spiderbot.Legs {
		sites = append(sites, Site{leg, keep, keep, z})
	}

	return step(name, speed, sites...)
}

// StepForward is one phase of walking. One front leg swings forwards, the body
// moves forward over the other three, and then the rear leg on the other side
// catches up. The phases alternate, so the front right leads from Retracted
// and the front left from Extended.
func StepForward(p Params, phase Phase) Gait {
	x, xo, ys, yst := p.XDefault, p.XOffset, p.YStart, p.YStep
	zd, zu := p.ZDefault, p.ZUp
	leg, body := p.LegMoveSpeed, p.BodyMoveSpeed

	if phase == Retracted {
		return Gait{
			step("lift front right", leg, Site{fr, x + xo, ys, zu}),
			step("swing front right", leg, Site{fr, x + xo, ys + 2*yst, zu}),
			step("plant front right", leg, Site{fr, x + xo, ys + 2*yst, zd}),
			step("shift body", body,
				Site{fl, x + xo, ys, zd},
				Site{bl, x + xo, ys + 2*yst, zd},
				Site{fr, x - xo, ys + yst, zd},
				Site{br, x - xo, ys + yst, zd}),
			step("lift bottom left", leg, Site{bl, x + xo, ys + 2*yst, zu}),
			step("swing bottom left", leg, Site{bl, x + xo, ys, zu}),
			step("plant bottom left", leg, Site{bl, x + xo, ys, zd}),
		}
	}

	return Gait{
		step("lift front left", leg, Site{fl, x + xo, ys, zu}),
		step("swing front left", leg, Site{fl, x + xo, ys + 2*yst, zu}),
		step("plant front left", leg, Site{fl, x + xo, ys + 2*yst, zd}),
		step("shift body", body,
			Site{fl, x - xo, ys + yst, zd},
			Site{bl, x - xo, ys + yst, zd},
			Site{fr, x + xo, ys, zd},
			Site{br, x + xo, ys + 2*yst, zd}),
		step("lift bottom right", leg, Site{br, x + xo, ys + 2*yst, zu}),
		step("swing bottom right", leg, Site{br, x + xo, ys, zu}),
		step("plant bottom right", leg, Site{br, x + xo, ys, zd}),
	}
}

// TurnLeft is one phase of turning anticlockwise on the spot. The bottom right
// leads from Retracted, and the front left from Extended.
func TurnLeft(p Params, phase Phase) Gait {
	x, xo, ys, yst := p.XDefault, p.XOffset, p.YStart, p.YStep
	x0, y0, x1, y1 := p.TurnX0, p.TurnY0, p.TurnX1, p.TurnY1
	zd, zu := p.ZDefault, p.ZUp
	s := p.SpotTurnSpeed

	if phase == Retracted {
		return Gait{
			step("lift bottom right", s, Site{br, x + xo, ys, zu}),
			step("turn", s,
				Site{fl, x1 - xo, y1, zd},
				Site{bl, x0 - xo, y0, zd},
				Site{fr, x1 + xo, y1, zd},
				Site{br, x0 + xo, y0, zu}),
			step("plant bottom right", s, Site{br, x0 + xo, y0, zd}),
			step("shift body", s,
				Site{fl, x1 + xo, y1, zd},
				Site{bl, x0 + xo, y0, zd},
				Site{fr, x1 - xo, y1, zd},
				Site{br, x0 - xo, y0, zd}),
			step("lift bottom left", s, Site{bl, x0 + xo, y0, zu}),
			step("turn back", s,
				Site{fl, x + xo, ys, zd},
				Site{bl, x + xo, ys, zu},
				Site{fr, x - xo, ys + yst, zd},
				Site{br, x - xo, ys + yst, zd}),
			step("plant bottom left", s, Site{bl, x + xo, ys, zd}),
		}
	}

	return Gait{
		step("lift front left", s, Site{fl, x + xo, ys, zu}),
		step("turn", s,
			Site{fl, x0 + xo, y0, zu},
			Site{bl, x1 + xo, y1, zd},
			Site{fr, x0 - xo, y0, zd},
			Site{br, x1 - xo, y1, zd}),
		step("plant front left", s, Site{fl, x0 + xo, y0, zd}),
		step("shift body", s,
			Site{fl, x0 - xo, y0, zd},
			Site{bl, x1 - xo, y1, zd},
			Site{fr, x0 + xo, y0, zd},
			Site{br, x1 + xo, y1, zd}),
		step("lift front right", s, Site{fr, x0 + xo, y0, zu}),
		step("turn back", s,
			Site{fl, x - xo, ys + yst, zd},
			Site{bl, x - xo, ys + yst, zd},
			Site{fr, x + xo, ys, zu},
			Site{br, x + xo, ys, zd}),
		step("plant front right", s, Site{fr, x + xo, ys, zd}),
	}
}

// TurnRight is one phase of turning clockwise on the spot. The front right
// leads from Retracted, and the bottom left from Extended.
func TurnRight(p Params, phase Phase) Gait {
	x, xo, ys, yst := p.XDefault, p.XOffset, p.YStart, p.YStep
	x0, y0, x1, y1 := p.TurnX0, p.TurnY0, p.TurnX1, p.TurnY1
	zd, zu := p.ZDefault, p.ZUp
	s := p.SpotTurnSpeed

	if phase == Retracted {
		return Gait{
			step("lift front right", s, Site{fr, x + xo, ys, zu}),
			step("turn", s,
				Site{fl, x0 - xo, y0, zd},
				Site{bl, x1 - xo, y1, zd},
				Site{fr, x0 + xo, y0, zu},
				Site{br, x1 + xo, y1, zd}),
			step("plant front right", s, Site{fr, x0 + xo, y0, zd}),
			step("shift body", s,
				Site{fl, x0 + xo, y0, zd},
				Site{bl, x1 + xo, y1, zd},
				Site{fr, x0 - xo, y0, zd},
				Site{br, x1 - xo, y1, zd}),
			step("lift front left", s, Site{fl, x0 + xo, y0, zu}),
			step("turn back", s,
				Site{fl, x + xo, ys, zu},
				Site{bl, x + xo, ys, zd},
				Site{fr, x - xo, ys + yst, zd},
				Site{br, x - xo, ys + yst, zd}),
			step("plant front left", s, Site{fl, x + xo, ys, zd}),
		}
	}

	return Gait{
		step("lift bottom left", s, Site{bl, x + xo, ys, zu}),
		step("turn", s,
			Site{fl, x1 + xo, y1, zd},
			Site{bl, x0 + xo, y0, zu},
			Site{fr, x1 - xo, y1, zd},
			Site{br, x0 - xo, y0, zd}),
		step("plant bottom left", s, Site{bl, x0 + xo, y0, zd}),
		step("shift body", s,
			Site{fl, x1 - xo, y1, zd},
			Site{bl, x0 - xo, y0, zd},
			Site{fr, x1 + xo, y1, zd},
			Site{br, x0 + xo, y0, zd}),
		step("lift bottom right", s, Site{br, x0 + xo, y0, zu}),
		step("turn back", s,
			Site{fl, x - xo, ys + yst, zd},
			Site{bl, x - xo, ys + yst, zd},
			Site{fr, x + xo, ys, zd},
			Site{br, x + xo, ys, zu}),
		step("plant bottom right", s, Site{br, x + xo, ys, zd}),
	}
}

// WaveLeg returns the front leg which waves in the given phase (of the bottom
// right leg), and the direction which the body must shift first to take the
// weight off it: positive is left.
func WaveLeg(phase Phase) (spiderbot.Leg, float64) {
	if phase == Retracted {
		return fr, -1
	}

	return fl, 1
}

// WaveLift is one wave of a front leg, which must already have been unloaded
// by shifting the body.
func WaveLift(p Params, leg spiderbot.Leg) Gait {
	s := p.BodyMoveSpeed
	return Gait{
		step("wave in", s, Site{leg, p.TurnX1, p.TurnY1, p.ZWave}),
		step("wave out", s, Site{leg, p.TurnX0, p.TurnY0, p.ZWave}),
	}
}

// BodyShift moves the body sideways by dx (positive is left) by moving every
// foot the other way, relative to where they are now. The feet stay on the
// ground.
func BodyShift(p Params, current spiderbot.Positions, dx float64) Step {
	sites := make([]Site, 0, spiderbot.NumLegs)
	for _, leg := range spiderbot.Legs {
		x := current.At(leg).X
		if leg.Left() {
			x += dx
		} else {
			x -= dx
		}

		sites = append(sites, Site{leg, x, keep, keep})
	}

	name := "shift body left"
	if dx < 0 {
		name = "shift body right"
	}

	return step(name, p.MoveSpeed, sites...)
}
