package main

import (
	"fmt"

	"go-lift-simulator/internal/scenario"
	"go-lift-simulator/pkg/elevator"
)

// console turns single key presses into controller operations.
// 키 입력 하나를 컨트롤러 동작 하나로 변환합니다.
type console struct {
	ctrl *elevator.Controller
	dir  elevator.Direction // set by u/d until the floor digit arrives
	step int

	// onFrame, when set, receives every recorded frame.
	onFrame func(scenario.Frame)
}

func newConsole(ctrl *elevator.Controller) *console {
	return &console{ctrl: ctrl}
}

// handle applies one key. It returns the line to print and whether the
// user asked to quit.
func (c *console) handle(ch rune) (string, bool) {
	switch {
	case ch == 'q' || ch == 'Q':
		return "bye", true

	case ch == 'u' || ch == 'U':
		c.dir = elevator.DirUp
		return "call Up: which floor?", false

	case ch == 'd' || ch == 'D':
		c.dir = elevator.DirDown
		return "call Down: which floor?", false

	case ch >= '0' && ch <= '9':
		floor := int(ch - '0')
		if floor == 0 {
			floor = 10
		}
		if c.dir != "" {
			dir := c.dir
			c.dir = ""
			return c.record(fmt.Sprintf("call %d %s", floor, dir), "", c.ctrl.Call(floor, dir)), false
		}
		return c.record(fmt.Sprintf("request %d", floor), "", c.ctrl.Request(floor)), false

	case ch == ' ':
		c.dir = ""
		action, err := c.ctrl.Tick()
		return c.record("tick", action.Type.String(), err), false

	case ch == 'r' || ch == 'R':
		c.dir = ""
		c.ctrl.Reset()
		return c.record("reset", "", nil), false
	}
	return "keys: 1-9,0 request | u/d + digit call | space tick | r reset | q quit", false
}

func (c *console) record(op, action string, err error) string {
	c.step++
	f := scenario.Frame{Step: c.step, Op: op, Action: action, State: c.ctrl.Snapshot()}
	if err != nil {
		f.Error = err.Error()
	}
	if c.onFrame != nil {
		c.onFrame(f)
	}
	return scenario.FormatFrame(f)
}
