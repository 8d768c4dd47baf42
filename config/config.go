package config

import (
	"os"
	"time"

	"github.com/adammck/spiderbot"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the robot. Every field has a
// default (see Default), so a config file only needs to mention the values
// which differ.
type Config struct {
	Geometry Geometry `yaml:"geometry"`
	Speeds   Speeds   `yaml:"speeds"`
	Timing   Timing   `yaml:"timing"`
	Servos   Servos   `yaml:"servos"`
	Power    Power    `yaml:"power"`
	Listener Listener `yaml:"listener"`
	Logging  Logging  `yaml:"logging"`
}

// Geometry holds the physical dimensions of the legs and the fixed foot
// positions which the gaits are built from. Distances are in millimeters.
type Geometry struct {
	FemurLength float64 `yaml:"femur_length"` // A
	TibiaLength float64 `yaml:"tibia_length"` // B
	CoxaLength  float64 `yaml:"coxa_length"`  // C
	SideLength  float64 `yaml:"side_length"`

	ZDefault float64 `yaml:"z_default"`
	ZUp      float64 `yaml:"z_up"`
	ZBoot    float64 `yaml:"z_boot"`
	ZWave    float64 `yaml:"z_wave"`
	XDefault float64 `yaml:"x_default"`
	XOffset  float64 `yaml:"x_offset"`
	YStart   float64 `yaml:"y_start"`
	YStep    float64 `yaml:"y_step"`

	// How far (on the X axis) the body is shifted sideways to balance on
	// three legs while waving.
	BodyShift float64 `yaml:"body_shift"`
}

// Speeds are in millimeters per tick.
type Speeds struct {
	Move      float64 `yaml:"move"`
	Multiple  float64 `yaml:"multiple"`
	SpotTurn  float64 `yaml:"spot_turn"`
	LegMove   float64 `yaml:"leg_move"`
	BodyMove  float64 `yaml:"body_move"`
	StandSeat float64 `yaml:"stand_seat"`
}

type Timing struct {
	Tick          time.Duration `yaml:"tick"`
	CommitTimeout time.Duration `yaml:"commit_timeout"`
	QueueSize     int           `yaml:"queue_size"`

	// Pauses between the primitives of the demonstration sequence.
	TestPause  time.Duration `yaml:"test_pause"`
	TestFinish time.Duration `yaml:"test_finish"`
}

type Servos struct {
	// Either "pulse" or "dynamixel".
	Driver string `yaml:"driver"`
	Port   string `yaml:"port"`
	Baud   uint   `yaml:"baud"`

	MinPulse  uint `yaml:"min_pulse_us"`
	MaxPulse  uint `yaml:"max_pulse_us"`
	Frequency uint `yaml:"frequency_hz"`

	// Channels (pulse) or IDs (dynamixel) of each servo, indexed by leg then
	// joint (coxa, femur, tibia).
	Channels [4][3]int `yaml:"channels"`
}

// Power is the supply voltage check. It only runs with the dynamixel driver,
// since hobby servos can't report their voltage.
type Power struct {
	MinVoltage    float64       `yaml:"min_voltage"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

type Listener struct {
	Address string `yaml:"address"`
}

type Logging struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path,omitempty"`
}

const (
	DriverPulse     = "pulse"
	DriverDynamixel = "dynamixel"
)

// Default returns the configuration of the stock robot.
func Default() Config {
	return Config{
		Geometry: Geometry{
			FemurLength: 55.0,
			TibiaLength: 77.5,
			CoxaLength:  27.5,
			SideLength:  71.0,
			ZDefault:    -50.0,
			ZUp:         -30.0,
			ZBoot:       -28.0,
			ZWave:       50.0,
			XDefault:    62.0,
			XOffset:     0.0,
			YStart:      0.0,
			YStep:       40.0,
			BodyShift:   15.0,
		},
		Speeds: Speeds{
			Move:      1.0,
			Multiple:  1.0,
			SpotTurn:  4.0,
			LegMove:   8.0,
			BodyMove:  3.0,
			StandSeat: 1.0,
		},
		Timing: Timing{
			Tick:          20 * time.Millisecond,
			CommitTimeout: 3 * time.Second,
			QueueSize:     3,
			TestPause:     2 * time.Second,
			TestFinish:    5 * time.Second,
		},
		Servos: Servos{
			Driver:    DriverPulse,
			Port:      "/dev/ttyACM0",
			Baud:      115200,
			MinPulse:  544,
			MaxPulse:  2400,
			Frequency: 50,
			Channels: [4][3]int{
				{2, 0, 1},   // front left
				{5, 3, 4},   // bottom left
				{8, 6, 7},   // front right
				{11, 9, 10}, // bottom right
			},
		},
		Power: Power{
			MinVoltage:    9.6,
			CheckInterval: 5 * time.Second,
		},
		Listener: Listener{
			Address: ":1234",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}

	return Parse(data)
}

// Parse is Load without the file.
func Parse(data []byte) (*Config, error) {
	c := Default()
	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Reach returns the furthest distance which a foot can be from its coxa
// joint, with every segment fully extended.
func (g Geometry) Reach() float64 {
	return g.FemurLength + g.TibiaLength + g.CoxaLength
}

// Validate returns every problem with the config, not just the first.
func (c *Config) Validate() error {
	var err error

	g := c.Geometry
	if g.FemurLength <= 0 || g.TibiaLength <= 0 || g.CoxaLength <= 0 || g.SideLength <= 0 {
		err = multierr.Append(err, errors.New("geometry: segment lengths must be positive"))
	}

	// Keep is passed in place of coordinates, so it must be impossible to
	// mistake it for one.
	if g.Reach() >= spiderbot.Keep {
		err = multierr.Append(err, errors.Errorf("geometry: reach %.1f overlaps the keep sentinel %.1f", g.Reach(), spiderbot.Keep))
	}

	s := c.Speeds
	for _, sp := range []struct {
		name string
		v    float64
	}{
		{"move", s.Move},
		{"multiple", s.Multiple},
		{"spot_turn", s.SpotTurn},
		{"leg_move", s.LegMove},
		{"body_move", s.BodyMove},
		{"stand_seat", s.StandSeat},
	} {
		if sp.v <= 0 {
			err = multierr.Append(err, errors.Errorf("speeds: %s must be positive, got %v", sp.name, sp.v))
		}
	}

	t := c.Timing
	if t.Tick <= 0 {
		err = multierr.Append(err, errors.New("timing: tick must be positive"))
	}
	if t.CommitTimeout <= t.Tick {
		err = multierr.Append(err, errors.Errorf("timing: commit_timeout (%s) must be longer than tick (%s)", t.CommitTimeout, t.Tick))
	}
	if t.QueueSize < 1 {
		err = multierr.Append(err, errors.Errorf("timing: queue_size must be at least 1, got %d", t.QueueSize))
	}
	if t.TestPause < 0 || t.TestFinish < 0 {
		err = multierr.Append(err, errors.New("timing: test pauses must not be negative"))
	}

	v := c.Servos
	switch v.Driver {
	case DriverPulse:
		if v.MinPulse >= v.MaxPulse {
			err = multierr.Append(err, errors.Errorf("servos: min_pulse_us (%d) must be below max_pulse_us (%d)", v.MinPulse, v.MaxPulse))
		}
		if v.Frequency == 0 || v.MaxPulse >= 1000000/v.Frequency {
			err = multierr.Append(err, errors.Errorf("servos: max_pulse_us (%d) does not fit in a %dHz period", v.MaxPulse, v.Frequency))
		}
	case DriverDynamixel:
	default:
		err = multierr.Append(err, errors.Errorf("servos: unknown driver %q", v.Driver))
	}

	if c.Power.MinVoltage < 0 {
		err = multierr.Append(err, errors.Errorf("power: min_voltage must not be negative, got %v", c.Power.MinVoltage))
	}
	if c.Power.CheckInterval <= 0 {
		err = multierr.Append(err, errors.New("power: check_interval must be positive"))
	}

	seen := map[int]bool{}
	for _, leg := range v.Channels {
		for _, ch := range leg {
			if ch < 0 {
				err = multierr.Append(err, errors.Errorf("servos: negative channel %d", ch))
			}
			if seen[ch] {
				err = multierr.Append(err, errors.Errorf("servos: channel %d used twice", ch))
			}
			seen[ch] = true
		}
	}

	return err
}
