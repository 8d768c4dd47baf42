// Package kinematics converts between foot positions and joint angles.
//
// Every leg is solved in its own coordinate space, with the coxa joint at the
// origin. The Z axis points up, so a foot on the ground below a standing robot
// has a negative Z. Angles are in degrees everywhere outside of this package.
package kinematics

import (
	"math"

	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/config"
	"github.com/adammck/spiderbot/utils"
)

const (
	minServoAngle = 0.0
	maxServoAngle = 180.0
)

// Solver holds the three segment lengths of a leg. All four legs are the same
// shape, so one solver serves them all.
type Solver struct {
	A float64 // femur
	B float64 // tibia
	C float64 // coxa offset
}

func NewSolver(g config.Geometry) Solver {
	return Solver{
		A: g.FemurLength,
		B: g.TibiaLength,
		C: g.CoxaLength,
	}
}

// Reach returns the furthest a foot can be from the coxa joint.
func (s Solver) Reach() float64 {
	return s.A + s.B + s.C
}

// CartesianToPolar returns the hip pitch (alpha), knee (beta), and hip yaw
// (gamma) angles which place the foot at x,y,z.
//
// Unreachable positions are not an error: the acos arguments are clamped, so
// the leg simply stretches as far towards the target as it can. The result
// is never NaN.
func (s Solver) CartesianToPolar(x, y, z float64) (alpha, beta, gamma float64) {

	// Project onto the vertical plane which contains the leg. w is the
	// horizontal distance from the coxa joint to the foot (negative if the
	// foot is behind it), and v is the same from the femur joint.
	w := math.Sqrt(x*x + y*y)
	if x < 0 {
		w = -w
	}
	v := w - s.C
	dd := v*v + z*z
	d := math.Sqrt(dd)

	alpha = math.Atan2(z, v) + safeAcos(s.A*s.A-s.B*s.B+dd, 2*s.A*d)
	beta = safeAcos(s.A*s.A+s.B*s.B-dd, 2*s.A*s.B)

	if w >= 0 {
		gamma = math.Atan2(y, x)
	} else {
		gamma = math.Atan2(-y, -x)
	}

	return utils.Deg(alpha), utils.Deg(beta), utils.Deg(gamma)
}

// PolarToCartesian is the inverse of CartesianToPolar.
func (s Solver) PolarToCartesian(alpha, beta, gamma float64) (x, y, z float64) {
	a := utils.Rad(alpha)
	b := utils.Rad(beta)
	g := utils.Rad(gamma)

	// Law of cosines gives the femur-joint-to-foot distance from the knee
	// angle, then the angle between the femur and that line.
	dd := s.A*s.A + s.B*s.B - 2*s.A*s.B*math.Cos(b)
	d := math.Sqrt(math.Max(dd, 0))
	phi := safeAcos(s.A*s.A-s.B*s.B+dd, 2*s.A*d)

	v := d * math.Cos(a-phi)
	z = d * math.Sin(a-phi)
	w := v + s.C

	return w * math.Cos(g), w * math.Sin(g), z
}

// PolarToServo converts the angles returned by CartesianToPolar into the
// angles which the servos of the given leg must be moved to. The legs are
// mounted as mirror images of each other, in diagonal pairs, so the servos
// of each pair turn the opposite way. The result is always within [0, 180].
func PolarToServo(leg spiderbot.Leg, alpha, beta, gamma float64) (a, b, c float64) {
	switch leg {
	case spiderbot.FrontLeft, spiderbot.BottomRight:
		a = 90 - alpha
		b = beta
		c = gamma + 90

	case spiderbot.BottomLeft, spiderbot.FrontRight:
		a = alpha + 90
		b = 180 - beta
		c = 90 - gamma

	default:
		log.Errorf("no servo correction for %s", leg)
		return 90, 90, 90
	}

	return clampServo(a), clampServo(b), clampServo(c)
}

// ServoToPolar is the inverse of PolarToServo, for angles which didn't need
// clamping.
func ServoToPolar(leg spiderbot.Leg, a, b, c float64) (alpha, beta, gamma float64) {
	switch leg {
	case spiderbot.FrontLeft, spiderbot.BottomRight:
		return 90 - a, b, c - 90

	case spiderbot.BottomLeft, spiderbot.FrontRight:
		return a - 90, 180 - b, 90 - c

	default:
		log.Errorf("no servo correction for %s", leg)
		return 0, 0, 0
	}
}

// Solve returns the servo angles which place the foot of the given leg at p.
func (s Solver) Solve(leg spiderbot.Leg, x, y, z float64) (a, b, c float64) {
	alpha, beta, gamma := s.CartesianToPolar(x, y, z)
	return PolarToServo(leg, alpha, beta, gamma)
}

func clampServo(angle float64) float64 {
	return utils.Clamp(angle, minServoAngle, maxServoAngle)
}

// safeAcos returns acos(num/den) in radians, clamping the ratio to [-1, 1]. A
// zero denominator (the foot is exactly on the joint) is treated as the
// limit of the ratio, rather than producing NaN.
func safeAcos(num, den float64) float64 {
	var r float64

	if den == 0 {
		if num >= 0 {
			r = 1
		} else {
			r = -1
		}
	} else {
		r = utils.Clamp(num/den, -1, 1)
	}

	return math.Acos(r)
}
