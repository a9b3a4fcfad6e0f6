// Package scenario parses YAML scripts that drive a lift controller and
// records every step as a frame.
//
// A script looks like:
//
//	name: call then request
//	floors: {min: 1, max: 10, initial: 1}
//	steps:
//	  - call: {floor: 4, direction: up}
//	  - tick: 5
//	  - expect: {floor: 4, doorsOpen: true, idle: true}
//	  - request: 1
//	    expectError: range
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go-lift-simulator/pkg/elevator"
)

// Scenario is one parsed script.
type Scenario struct {
	Name   string  `yaml:"name"`
	Floors *Floors `yaml:"floors,omitempty"`
	Steps  []Step  `yaml:"steps"`
}

// Floors overrides the car layout; omitted fields keep the defaults.
type Floors struct {
	Min     *int `yaml:"min,omitempty"`
	Max     *int `yaml:"max,omitempty"`
	Initial *int `yaml:"initial,omitempty"`
}

// Step holds exactly one operation, optionally with the error kind it must
// fail with.
type Step struct {
	Request     *int         `yaml:"request,omitempty"`
	Call        *CallStep    `yaml:"call,omitempty"`
	Tick        int          `yaml:"tick,omitempty"`
	Drain       int          `yaml:"drain,omitempty"`
	Reset       bool         `yaml:"reset,omitempty"`
	Expect      *Expectation `yaml:"expect,omitempty"`
	ExpectError ErrorKind    `yaml:"expectError,omitempty"`
}

// CallStep is a directional call.
type CallStep struct {
	Floor     int    `yaml:"floor"`
	Direction string `yaml:"direction"`
}

// Expectation checks observable state. Nil fields are not checked.
type Expectation struct {
	Floor     *int  `yaml:"floor,omitempty"`
	DoorsOpen *bool `yaml:"doorsOpen,omitempty"`
	Idle      *bool `yaml:"idle,omitempty"`
	WindowMin *int  `yaml:"windowMin,omitempty"`
	WindowMax *int  `yaml:"windowMax,omitempty"`
}

// ErrorKind names the error class a step is expected to produce.
type ErrorKind string

const (
	KindRange     ErrorKind = "range"
	KindConflict  ErrorKind = "conflict"
	KindDirection ErrorKind = "direction"
	KindTickLimit ErrorKind = "tickLimit"
)

var kindErrors = map[ErrorKind]error{
	KindRange:     elevator.ErrOutOfRange,
	KindConflict:  elevator.ErrStateConflict,
	KindDirection: elevator.ErrInvalidDirection,
	KindTickLimit: elevator.ErrTickLimit,
}

// ErrInvalidScenario wraps every parse and validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Load reads and parses a script file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a script and validates it. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step names exactly one operation.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, st := range s.Steps {
		if st.Tick < 0 || st.Drain < 0 {
			return fmt.Errorf("%w: step %d has a negative count", ErrInvalidScenario, i+1)
		}
		if n := st.opCount(); n != 1 {
			return fmt.Errorf("%w: step %d has %d operations, want 1", ErrInvalidScenario, i+1, n)
		}
		if st.Expect != nil && st.ExpectError != "" {
			return fmt.Errorf("%w: step %d: expect cannot carry expectError", ErrInvalidScenario, i+1)
		}
		if st.ExpectError != "" {
			if _, ok := kindErrors[st.ExpectError]; !ok {
				return fmt.Errorf("%w: step %d: unknown error kind %q", ErrInvalidScenario, i+1, st.ExpectError)
			}
		}
		if st.Call != nil {
			if _, err := elevator.ParseDirection(st.Call.Direction); err != nil && st.ExpectError != KindDirection {
				return fmt.Errorf("%w: step %d: %v", ErrInvalidScenario, i+1, err)
			}
		}
	}
	return nil
}

// CarConfig resolves the car layout of the script on top of base.
func (s *Scenario) CarConfig(base elevator.Config) elevator.Config {
	return s.Floors.apply(base)
}

func (f *Floors) apply(cfg elevator.Config) elevator.Config {
	if f == nil {
		return cfg
	}
	if f.Min != nil {
		cfg.MinFloor = *f.Min
	}
	if f.Max != nil {
		cfg.MaxFloor = *f.Max
	}
	if f.Initial != nil {
		cfg.InitialFloor = *f.Initial
	}
	return cfg
}

func (st Step) opCount() int {
	n := 0
	if st.Request != nil {
		n++
	}
	if st.Call != nil {
		n++
	}
	if st.Tick > 0 {
		n++
	}
	if st.Drain > 0 {
		n++
	}
	if st.Reset {
		n++
	}
	if st.Expect != nil {
		n++
	}
	return n
}

// Op names the operation of the step.
func (st Step) Op() string {
	switch {
	case st.Request != nil:
		return "request"
	case st.Call != nil:
		return "call"
	case st.Tick > 0:
		return "tick"
	case st.Drain > 0:
		return "drain"
	case st.Reset:
		return "reset"
	case st.Expect != nil:
		return "expect"
	}
	return ""
}
