package servos

import (
	"io"
	"sync"

	"github.com/adammck/dynamixel/network"
	"github.com/adammck/spiderbot"
	"github.com/adammck/spiderbot/config"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Pool is every servo on the robot, indexed by leg then joint.
type Pool struct {
	// Held while talking to the bus, so that voltage checks don't interleave
	// with the writes of a tick.
	mu sync.Mutex

	servos [spiderbot.NumLegs][spiderbot.NumJoints]*Servo

	// Only one of these is set, depending on the driver.
	ctrl    *maestro
	network *network.Network
}

// NewPool creates the servos described by the config, talking over the given
// port. If any servo can't be initialized, those which were are relaxed and an
// error is returned.
func NewPool(cfg config.Servos, port io.ReadWriteCloser) (*Pool, error) {
	p := &Pool{}

	switch cfg.Driver {
	case config.DriverPulse:
		p.ctrl = newMaestro(port)

	case config.DriverDynamixel:
		p.network = network.New(port)

	default:
		return nil, errors.Errorf("unknown servo driver: %q", cfg.Driver)
	}

	for _, leg := range spiderbot.Legs {
		for _, joint := range spiderbot.Joints {
			ch := cfg.Channels[leg.Index()][joint.Index()]
			name := leg.String() + " " + joint.String()

			if p.ctrl != nil {
				p.servos[leg.Index()][joint.Index()] = newPulse(p.ctrl, name, uint8(ch), cfg.MinPulse, cfg.MaxPulse, cfg.Frequency)
				continue
			}

			s, err := NewDynamixel(p.network, name, ch)
			if err != nil {
				shutdownErr := p.Shutdown()
				return nil, multierr.Append(errors.Wrapf(err, "creating %s", name), shutdownErr)
			}

			p.servos[leg.Index()][joint.Index()] = s
		}
	}

	log.Infof("created %d %s servos", spiderbot.NumLegs*spiderbot.NumJoints, cfg.Driver)
	return p, nil
}

// Servo returns the servo for a joint. It may be nil if the pool failed to
// initialize.
func (p *Pool) Servo(leg spiderbot.Leg, joint spiderbot.Joint) *Servo {
	return p.servos[leg.Index()][joint.Index()]
}

// SetLegAngles moves the servos of one leg. a is the femur, b is the tibia, and
// c is the coxa. Every joint is attempted, even if an earlier one fails.
func (p *Pool) SetLegAngles(leg spiderbot.Leg, a, b, c float64) error {
	var err error

	for _, x := range []struct {
		joint spiderbot.Joint
		angle float64
	}{
		{spiderbot.Femur, a},
		{spiderbot.Tibia, b},
		{spiderbot.Coxa, c},
	} {
		s := p.Servo(leg, x.joint)
		if s == nil {
			err = multierr.Append(err, errors.Errorf("no servo for %s %s", leg, x.joint))
			continue
		}

		err = multierr.Append(err, s.SetAngle(x.angle))
	}

	return err
}

// Sync runs the given function with all writes buffered, then starts all of
// the moves at once.
func (p *Pool) Sync(f func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.network != nil {
		f()
		return errors.Wrap(p.network.Action(), "sending action")
	}

	p.ctrl.batch()
	f()
	return p.ctrl.flush()
}

// Shutdown relaxes all servos in the pool. This should be called before
// terminating the program, to ensure that servos don't stay powered up
// indefinitely. Every servo is attempted, even if some fail.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error

	for _, leg := range spiderbot.Legs {
		for _, joint := range spiderbot.Joints {
			s := p.Servo(leg, joint)
			if s == nil {
				continue
			}

			err = multierr.Append(err, errors.Wrapf(s.Relax(), "relaxing %s", s.Name))
		}
	}

	if p.network != nil {
		err = multierr.Append(err, errors.Wrap(p.network.Action(), "sending action"))
	}

	return err
}

// Voltage returns the supply voltage, as measured by the front left coxa.
func (p *Pool) Voltage() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.Servo(spiderbot.FrontLeft, spiderbot.Coxa).Voltage()
}
