package voltage

import (
	"context"
	"fmt"
	"time"

	"github.com/adammck/spiderbot/config"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "voltage",
})

type HasVoltage interface {
	Voltage() (float64, error)
}

// Check periodically reads the supply voltage. Running at low voltage for too
// long will damage the battery, so it should be checked pretty regularly.
type Check struct {
	HasVoltage

	clock    clock.Clock
	interval time.Duration
	minimum  float64
	t        time.Time
}

func New(src HasVoltage, clk clock.Clock, cfg config.Power) *Check {
	return &Check{
		HasVoltage: src,
		clock:      clk,
		interval:   cfg.CheckInterval,
		minimum:    cfg.MinVoltage,
	}
}

// NeedsCheck returns true if it's been at least one interval since the
// voltage was last checked.
func (vc *Check) NeedsCheck(now time.Time) bool {
	return vc.t.IsZero() || now.Sub(vc.t) >= vc.interval
}

// LowError is returned when the voltage is below the minimum.
type LowError struct {
	Voltage float64
	Minimum float64
}

func (e *LowError) Error() string {
	return fmt.Sprintf("low voltage: %.2fv (minimum %.2fv)", e.Voltage, e.Minimum)
}

// CheckVoltage fetches the voltage, and returns a *LowError if it's too low.
// In this case, the program should be terminated as soon as possible to
// preserve the battery.
func (vc *Check) CheckVoltage() error {
	vc.t = vc.clock.Now()
	return vc.check()
}

func (vc *Check) check() error {
	val, err := vc.Voltage()
	if err != nil {
		return fmt.Errorf("%s (while checking voltage)", err)
	}

	log.Debugf("voltage: %.2fv", val)

	if val < vc.minimum {
		return &LowError{Voltage: val, Minimum: vc.minimum}
	}

	return nil
}

func (vc *Check) Tick(now time.Time) error {
	if !vc.NeedsCheck(now) {
		return nil
	}

	vc.t = now
	return vc.check()
}

// Run checks the voltage every interval until the context is cancelled or the
// voltage is too low. Read errors are logged, and the check tried again next
// time.
func (vc *Check) Run(ctx context.Context) error {
	t := vc.clock.Ticker(vc.interval)
	defer t.Stop()

	now := vc.clock.Now()
	for {
		err := vc.Tick(now)

		var low *LowError
		if errors.As(err, &low) {
			return err
		}

		if err != nil {
			log.Warn(err)
		}

		select {
		case <-ctx.Done():
			return nil

		case now = <-t.C:
		}
	}
}
