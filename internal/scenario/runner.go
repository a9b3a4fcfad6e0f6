package scenario

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-lift-simulator/pkg/elevator"
)

// Frame is the state after one tick or one non-tick operation.
type Frame struct {
	Step   int               `json:"step"`
	Op     string            `json:"op"`
	Action string            `json:"action,omitempty"`
	Error  string            `json:"error,omitempty"`
	State  elevator.Snapshot `json:"state"`
}

// Transcript is the recorded run of a scenario.
type Transcript struct {
	RunID  string  `json:"runId"`
	Name   string  `json:"name"`
	Frames []Frame `json:"frames"`
}

// Final returns the last recorded state.
func (t *Transcript) Final() (elevator.Snapshot, bool) {
	if len(t.Frames) == 0 {
		return elevator.Snapshot{}, false
	}
	return t.Frames[len(t.Frames)-1].State, true
}

// StepError reports the step at which a run stopped.
type StepError struct {
	Step int
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ErrExpectation is wrapped by failed expect steps and by steps that did
// not fail the way expectError said.
var ErrExpectation = errors.New("expectation failed")

// Run executes the scenario against a fresh car built from base overlaid
// with the script's floors. The transcript is returned even when a step
// fails, up to and including the failing step.
func Run(sc *Scenario, base elevator.Config, opts ...elevator.Option) (*Transcript, error) {
	car, err := elevator.NewCarWithConfig(sc.CarConfig(base))
	if err != nil {
		return nil, err
	}
	ctrl := elevator.NewController(car, opts...)

	t := &Transcript{RunID: uuid.NewString(), Name: sc.Name}
	for i, st := range sc.Steps {
		r := runner{ctrl: ctrl, t: t, step: i + 1, op: st.Op()}
		if err := r.apply(st); err != nil {
			return t, &StepError{Step: i + 1, Op: st.Op(), Err: err}
		}
	}
	return t, nil
}

type runner struct {
	ctrl *elevator.Controller
	t    *Transcript
	step int
	op   string
}

func (r *runner) record(action string, err error) {
	f := Frame{Step: r.step, Op: r.op, Action: action, State: r.ctrl.Snapshot()}
	if err != nil {
		f.Error = err.Error()
	}
	r.t.Frames = append(r.t.Frames, f)
}

func (r *runner) apply(st Step) error {
	var opErr error
	switch {
	case st.Request != nil:
		opErr = r.ctrl.Request(*st.Request)
		r.record("", opErr)

	case st.Call != nil:
		dir, err := elevator.ParseDirection(st.Call.Direction)
		if err == nil {
			err = r.ctrl.Call(st.Call.Floor, dir)
		}
		opErr = err
		r.record("", opErr)

	case st.Tick > 0:
		for i := 0; i < st.Tick && opErr == nil; i++ {
			var action elevator.Action
			action, opErr = r.ctrl.Tick()
			r.record(action.Type.String(), opErr)
		}

	case st.Drain > 0:
		opErr = r.drain(st.Drain)

	case st.Reset:
		r.ctrl.Reset()
		r.record("", nil)

	case st.Expect != nil:
		return r.check(*st.Expect)
	}

	return r.verdict(st.ExpectError, opErr)
}

// drain ticks like Controller.Drain but records a frame per tick.
func (r *runner) drain(limit int) error {
	for n := 0; !r.ctrl.HasNoPendingRequest(); n++ {
		if n >= limit {
			d, _ := r.ctrl.Pending()
			err := fmt.Errorf("%w: floor %d not served after %d ticks", elevator.ErrTickLimit, d.Floor, n)
			r.record("", err)
			return err
		}
		action, err := r.ctrl.Tick()
		r.record(action.Type.String(), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) verdict(want ErrorKind, got error) error {
	if want == "" {
		return got
	}
	if got == nil {
		return fmt.Errorf("%w: expected %s error, operation succeeded", ErrExpectation, want)
	}
	if !errors.Is(got, kindErrors[want]) {
		return fmt.Errorf("%w: expected %s error, got %v", ErrExpectation, want, got)
	}
	return nil
}

func (r *runner) check(e Expectation) error {
	s := r.ctrl.Snapshot()
	var failures []error
	if e.Floor != nil && *e.Floor != s.Floor {
		failures = append(failures, fmt.Errorf("floor: want %d, got %d", *e.Floor, s.Floor))
	}
	if e.DoorsOpen != nil && *e.DoorsOpen != s.DoorsOpen {
		failures = append(failures, fmt.Errorf("doorsOpen: want %v, got %v", *e.DoorsOpen, s.DoorsOpen))
	}
	if e.Idle != nil && *e.Idle != s.Idle() {
		failures = append(failures, fmt.Errorf("idle: want %v, got %v", *e.Idle, s.Idle()))
	}
	if e.WindowMin != nil && *e.WindowMin != s.WindowMin {
		failures = append(failures, fmt.Errorf("windowMin: want %d, got %d", *e.WindowMin, s.WindowMin))
	}
	if e.WindowMax != nil && *e.WindowMax != s.WindowMax {
		failures = append(failures, fmt.Errorf("windowMax: want %d, got %d", *e.WindowMax, s.WindowMax))
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrExpectation, errors.Join(failures...))
}
