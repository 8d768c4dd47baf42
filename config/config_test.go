package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adammck/spiderbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Less(t, c.Geometry.Reach(), spiderbot.Keep)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spiderbot.yaml")

	content := `
geometry:
  y_step: 30
speeds:
  leg_move: 6
timing:
  tick: 10ms
  commit_timeout: 5s
servos:
  driver: dynamixel
  port: /dev/ttyUSB0
  channels:
    - [1, 2, 3]
    - [4, 5, 6]
    - [7, 8, 9]
    - [10, 11, 12]
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	// Overridden
	assert.Equal(t, 30.0, c.Geometry.YStep)
	assert.Equal(t, 6.0, c.Speeds.LegMove)
	assert.Equal(t, 10*time.Millisecond, c.Timing.Tick)
	assert.Equal(t, 5*time.Second, c.Timing.CommitTimeout)
	assert.Equal(t, DriverDynamixel, c.Servos.Driver)
	assert.Equal(t, [3]int{10, 11, 12}, c.Servos.Channels[3])
	assert.Equal(t, "debug", c.Logging.Level)

	// Defaults
	assert.Equal(t, 55.0, c.Geometry.FemurLength)
	assert.Equal(t, 3, c.Timing.QueueSize)
	assert.Equal(t, ":1234", c.Listener.Address)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	type eg struct {
		yaml string
		msg  string
	}

	examples := []eg{
		{"geometry: {femur_length: 0}", "segment lengths"},
		{"geometry: {femur_length: 200}", "keep sentinel"},
		{"speeds: {leg_move: -1}", "leg_move"},
		{"timing: {tick: 0s}", "tick must be positive"},
		{"timing: {commit_timeout: 10ms}", "commit_timeout"},
		{"timing: {queue_size: 0}", "queue_size"},
		{"servos: {driver: carrier-pigeon}", "unknown driver"},
		{"servos: {min_pulse_us: 2500}", "min_pulse_us"},
		{"servos: {channels: [[0, 0, 1], [3, 4, 5], [6, 7, 8], [9, 10, 11]]}", "used twice"},
		{"power: {check_interval: 0s}", "check_interval"},
		{"geometry: [", "error parsing"},
	}

	for i, x := range examples {
		_, err := Parse([]byte(x.yaml))
		if assert.Error(t, err, "example %d", i+1) {
			assert.Contains(t, err.Error(), x.msg, "example %d", i+1)
		}
	}
}

func TestValidateOrder(t *testing.T) {
	c := Default()
	c.Speeds.StandSeat = 0
	c.Speeds.Move = -1
	c.Speeds.LegMove = 0

	want := "speeds: move must be positive, got -1; " +
		"speeds: leg_move must be positive, got 0; " +
		"speeds: stand_seat must be positive, got 0"

	for i := 0; i < 10; i++ {
		err := c.Validate()
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
	}
}
