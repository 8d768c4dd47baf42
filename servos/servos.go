package servos

import (
	"fmt"
	"math"

	"github.com/adammck/dynamixel/network"
	"github.com/adammck/dynamixel/servo"
	"github.com/adammck/dynamixel/servo/ax"
	"github.com/adammck/spiderbot/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "servos",
})

// Kind is the type of hardware behind a Servo.
type Kind int

const (
	// KindPulse is a hobby servo driven by a serial pulse-width controller.
	KindPulse Kind = iota

	// KindDynamixel is an AX-series Dynamixel on a half-duplex bus.
	KindDynamixel
)

func (k Kind) String() string {
	switch k {
	case KindPulse:
		return "pulse"
	case KindDynamixel:
		return "dynamixel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	minAngle = 0
	maxAngle = 180

	// Resolution of the duty register which the pulse width is reported as.
	maxDuty = 4095

	// No angle has been written yet.
	noAngle = -1
)

// Servo is a single joint. The two kinds share SetAngle; everything else about
// them is different, so they're switched on rather than hidden behind an
// interface.
type Servo struct {
	Kind Kind
	Name string

	// The last angle written, in whole degrees.
	angle int

	// KindPulse
	ctrl    *maestro
	channel uint8
	pulse   pulseRange

	// KindDynamixel
	dx *servo.Servo
}

type pulseRange struct {
	min  uint
	max  uint
	freq uint
}

// newPulse returns a hobby servo on the given channel of a pulse controller.
// Nothing is written until the first SetAngle.
func newPulse(ctrl *maestro, name string, channel uint8, minUs, maxUs, freq uint) *Servo {
	return &Servo{
		Kind:    KindPulse,
		Name:    name,
		angle:   noAngle,
		ctrl:    ctrl,
		channel: channel,
		pulse:   pulseRange{minUs, maxUs, freq},
	}
}

// NewDynamixel returns an AX servo with the given ID, after checking that it's
// there and enabling torque.
func NewDynamixel(n *network.Network, name string, ID int) (*Servo, error) {
	s, err := ax.New(n, ID)
	if err != nil {
		return nil, errors.Wrapf(err, "servo #%d", ID)
	}

	// Don't bother sending ACKs for writes. We must do this first, to ensure
	// that the servos are in the expected state before sending other commands.
	err = s.SetReturnLevel(1)
	if err != nil {
		return nil, fmt.Errorf("%s (while setting return level of #%d)", err, ID)
	}

	err = s.Ping()
	if err != nil {
		return nil, fmt.Errorf("%s (while pinging #%d)", err, ID)
	}

	err = s.SetReturnDelayTime(0)
	if err != nil {
		return nil, fmt.Errorf("%s (while setting return delay of #%d)", err, ID)
	}

	err = s.SetTorqueEnable(true)
	if err != nil {
		return nil, fmt.Errorf("%s (while enabling torque of #%d)", err, ID)
	}

	err = s.SetMovingSpeed(1023)
	if err != nil {
		return nil, fmt.Errorf("%s (while setting move speed of #%d)", err, ID)
	}

	// Buffer all subsequent instructions. The ACTION command is issued at the
	// end of each tick, by Pool.Sync.
	s.SetBuffered(true)

	return &Servo{
		Kind:  KindDynamixel,
		Name:  name,
		angle: noAngle,
		dx:    s,
	}, nil
}

// SetAngle moves the servo to the given angle, in degrees. The angle is clamped
// to [0, 180] and rounded to a whole degree. Nothing is written if the servo is
// already at that angle. If the write fails, the angle isn't recorded, so the
// next call will try again.
func (s *Servo) SetAngle(angle float64) error {
	a := int(math.Round(utils.Clamp(angle, minAngle, maxAngle)))
	if a == s.angle {
		return nil
	}

	var err error

	switch s.Kind {
	case KindPulse:
		us := PulseWidth(a, s.pulse.min, s.pulse.max)
		log.Debugf("%s: angle=%d pulse=%dus duty=%d/%d", s.Name, a, us, Duty(us, maxDuty, s.pulse.freq), maxDuty)
		err = s.ctrl.SetTarget(s.channel, us)

	case KindDynamixel:
		err = s.dx.MoveTo(float64(a - 90))

	default:
		err = errors.Errorf("unknown servo kind: %s", s.Kind)
	}

	if err != nil {
		return errors.Wrapf(err, "%s to %d", s.Name, a)
	}

	s.angle = a
	return nil
}

// Angle returns the last angle written, and false if none has been.
func (s *Servo) Angle() (int, bool) {
	return s.angle, s.angle != noAngle
}

// Relax stops holding the servo in position.
func (s *Servo) Relax() error {
	s.angle = noAngle

	switch s.Kind {
	case KindPulse:
		return s.ctrl.SetTarget(s.channel, 0)

	case KindDynamixel:
		err := s.dx.SetTorqueEnable(false)
		if err != nil {
			return err
		}

		return s.dx.SetLED(false)

	default:
		return errors.Errorf("unknown servo kind: %s", s.Kind)
	}
}

// ErrNoVoltage is returned by Voltage for servos which can't report it.
var ErrNoVoltage = errors.New("servo can't report voltage")

// Voltage returns the supply voltage measured by the servo. Only Dynamixels
// can do this.
func (s *Servo) Voltage() (float64, error) {
	if s.Kind != KindDynamixel {
		return 0, errors.Wrap(ErrNoVoltage, s.Name)
	}

	v, err := s.dx.Voltage()
	if err != nil {
		return 0, errors.Wrapf(err, "reading voltage of %s", s.Name)
	}

	return v, nil
}

// PulseWidth returns the pulse width (in microseconds) for the given angle,
// linearly between minUs (at 0) and maxUs (at 180).
func PulseWidth(angle int, minUs, maxUs uint) uint {
	if angle < minAngle {
		angle = minAngle
	} else if angle > maxAngle {
		angle = maxAngle
	}

	return minUs + (uint(angle)*(maxUs-minUs))/maxAngle
}

// Duty returns the duty value, out of maxDuty, which produces a pulse of the
// given width at the given frequency.
func Duty(pulseUs, maxDuty, freqHz uint) uint {
	if freqHz == 0 {
		return 0
	}

	// pulse / period * (maxDuty+1), rounded to the nearest step.
	steps := uint64(maxDuty) + 1
	d := (uint64(pulseUs)*uint64(freqHz)*steps + 500000) / 1000000
	if d > uint64(maxDuty) {
		d = uint64(maxDuty)
	}

	return uint(d)
}
