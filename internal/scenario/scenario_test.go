package scenario

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go-lift-simulator/pkg/elevator"
)

func TestLoadAndRun_Walkthrough(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "walkthrough.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tr, err := Run(sc, elevator.DefaultConfig())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if tr.RunID == "" {
		t.Error("Expected a run id")
	}
	if len(tr.Frames) != 17 {
		t.Errorf("Expected 17 frames, got %d", len(tr.Frames))
	}
	final, ok := tr.Final()
	if !ok || final.Floor != 7 || !final.DoorsOpen || !final.Idle() {
		t.Errorf("Unexpected final state %+v", final)
	}
}

func TestRun_CustomFloors(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "short_building.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := Run(sc, elevator.DefaultConfig()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cfg := sc.CarConfig(elevator.DefaultConfig())
	if cfg.MaxFloor != 3 || cfg.InitialFloor != 3 || cfg.MinFloor != 1 {
		t.Errorf("Unexpected car config %+v", cfg)
	}
}

func TestRun_FailedExpectation(t *testing.T) {
	sc, err := Parse([]byte(`
name: wrong floor
steps:
  - request: 3
  - tick: 1
  - expect: {floor: 3}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tr, err := Run(sc, elevator.DefaultConfig())
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Expected *StepError, got %v", err)
	}
	if stepErr.Step != 3 || stepErr.Op != "expect" {
		t.Errorf("Expected failure at step 3 expect, got %d %s", stepErr.Step, stepErr.Op)
	}
	if !errors.Is(err, ErrExpectation) {
		t.Errorf("Expected ErrExpectation, got %v", err)
	}
	if len(tr.Frames) != 2 {
		t.Errorf("Expected the frames before the failure, got %d", len(tr.Frames))
	}
}

func TestRun_ExpectErrorNotRaised(t *testing.T) {
	sc, err := Parse([]byte(`
name: valid request flagged as error
steps:
  - request: 3
    expectError: range
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := Run(sc, elevator.DefaultConfig()); !errors.Is(err, ErrExpectation) {
		t.Errorf("Expected ErrExpectation, got %v", err)
	}
}

func TestRun_UnexpectedError(t *testing.T) {
	sc, err := Parse([]byte(`
name: conflict
steps:
  - request: 3
  - call: {floor: 5, direction: down}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tr, err := Run(sc, elevator.DefaultConfig())
	if !errors.Is(err, elevator.ErrStateConflict) {
		t.Errorf("Expected ErrStateConflict, got %v", err)
	}
	if last := tr.Frames[len(tr.Frames)-1]; last.Error == "" {
		t.Error("Expected the failing frame to carry the error")
	}
}

func TestRun_DrainLimit(t *testing.T) {
	sc, err := Parse([]byte(`
name: too few ticks
steps:
  - request: 9
  - drain: 2
    expectError: tickLimit
  - expect: {floor: 3, idle: false}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := Run(sc, elevator.DefaultConfig()); err != nil {
		t.Errorf("Run failed: %v", err)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"no steps":       "name: empty\nsteps: []\n",
		"unknown key":    "name: x\nsteps:\n  - teleport: 3\n",
		"two ops":        "name: x\nsteps:\n  - request: 3\n    tick: 1\n",
		"bad direction":  "name: x\nsteps:\n  - call: {floor: 2, direction: left}\n",
		"bad error kind": "name: x\nsteps:\n  - request: 3\n    expectError: boom\n",
		"negative tick":  "name: x\nsteps:\n  - tick: -1\n",
		"expect error":   "name: x\nsteps:\n  - expect: {floor: 1}\n    expectError: range\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("Expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func TestWriters(t *testing.T) {
	sc, _ := Parse([]byte("name: print\nsteps:\n  - call: {floor: 2, direction: down}\n  - tick: 2\n"))
	tr, _ := Run(sc, elevator.DefaultConfig())

	var text bytes.Buffer
	if err := WriteText(&text, tr); err != nil {
		t.Fatal(err)
	}
	out := text.String()
	for _, want := range []string{"# print", "-> Call 2 Down", "OpenDoor", "[open  ]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q:\n%s", want, out)
		}
	}

	var jsonl bytes.Buffer
	if err := WriteJSONL(&jsonl, tr); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(jsonl.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 JSON lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], `"doorsOpen":true`) {
		t.Errorf("Expected final line with open doors, got %s", lines[2])
	}
}
