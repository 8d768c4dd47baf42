package voltage

import (
	"sync"
)

// FakeVoltage reports whatever voltage it was last given, or Err.
type FakeVoltage struct {
	mu      sync.Mutex
	voltage float64
	reads   int

	Err error
}

func New(voltage float64) *FakeVoltage {
	return &FakeVoltage{voltage: voltage}
}

func (s *FakeVoltage) Set(voltage float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voltage = voltage
}

func (s *FakeVoltage) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *FakeVoltage) Voltage() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++

	if s.Err != nil {
		return 0, s.Err
	}

	return s.voltage, nil
}
