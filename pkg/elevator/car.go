// Package elevator implements a discrete, tick-driven single-car lift.
// 이 패키지는 틱 단위로 구동되는 단일 엘리베이터 상태 기계를 구현합니다.
//
// A Car owns the physical state (floor, doors) and refuses unsafe moves.
// A Controller holds the pending destination and drives its Car one
// operation per Tick. Nothing here is safe for concurrent use; callers
// serialize access.
package elevator

import "fmt"

// Car is the physical cabin. It never changes state on its own.
// Car는 물리적인 엘리베이터 칸이며 명령 없이 상태가 바뀌지 않습니다.
type Car struct {
	minFloor  int
	maxFloor  int
	floor     int
	doorsOpen bool
}

// NewCar creates a car on the default 1..10 layout.
func NewCar(initialFloor int) (*Car, error) {
	cfg := DefaultConfig()
	cfg.InitialFloor = initialFloor
	return NewCarWithConfig(cfg)
}

// NewCarWithConfig creates a car with explicit bounds.
// 잘못된 설정이 감지되면 즉시 에러를 반환합니다 (Fail Fast).
func NewCarWithConfig(cfg Config) (*Car, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Car{
		minFloor: cfg.MinFloor,
		maxFloor: cfg.MaxFloor,
		floor:    cfg.InitialFloor,
	}, nil
}

// Floor returns the current floor.
func (c *Car) Floor() int { return c.floor }

// DoorsOpen reports whether the doors are open.
func (c *Car) DoorsOpen() bool { return c.doorsOpen }

// Bounds returns the global floor range of the car.
func (c *Car) Bounds() (int, int) { return c.minFloor, c.maxFloor }

// IsInFloor reports whether the car is at floor.
func (c *Car) IsInFloor(floor int) bool { return c.floor == floor }

// OpenDoors opens the doors. Opening open doors is a no-op.
func (c *Car) OpenDoors() { c.doorsOpen = true }

// CloseDoors closes the doors. Closing closed doors is a no-op.
func (c *Car) CloseDoors() { c.doorsOpen = false }

// MoveUp moves exactly one floor up.
func (c *Car) MoveUp() error { return c.moveTo(c.floor + 1) }

// MoveDown moves exactly one floor down.
func (c *Car) MoveDown() error { return c.moveTo(c.floor - 1) }

// moveTo applies a one-floor move after the safety checks.
// 문이 열려 있거나 범위를 벗어나면 이동하지 않습니다.
func (c *Car) moveTo(floor int) error {
	if c.doorsOpen {
		return fmt.Errorf("%w: cannot move from floor %d with doors open", ErrStateConflict, c.floor)
	}
	if err := checkRange(floor, c.minFloor, c.maxFloor); err != nil {
		return err
	}
	c.floor = floor
	return nil
}
