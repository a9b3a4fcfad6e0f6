package elevator

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Controller arbitrates requests and calls and drives one Car.
// Controller는 요청과 호출을 중재하고 한 대의 Car를 구동합니다.
// No mutex, no goroutine, no time.
type Controller struct {
	id  string
	car *Car

	// --- State ---
	pending  *Destination // nil when idle
	minFloor int          // active travel window
	maxFloor int
	ticks    uint64

	// --- Observability ---
	logger            zerolog.Logger
	eventCh           chan Event
	droppedEventCount uint64
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithID labels log lines and snapshots.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithEventBuffer sets the event channel capacity; 0 disables events.
func WithEventBuffer(n int) Option {
	return func(c *Controller) {
		if n <= 0 {
			c.eventCh = nil
			return
		}
		c.eventCh = make(chan Event, n)
	}
}

// NewController wires a controller to car. The car is not copied; the
// controller mutates it only through the Car methods.
func NewController(car *Car, opts ...Option) *Controller {
	lo, hi := car.Bounds()
	c := &Controller{
		car:      car,
		minFloor: lo,
		maxFloor: hi,
		logger:   zerolog.Nop(),
		eventCh:  make(chan Event, defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id != "" {
		c.logger = c.logger.With().Str("id", c.id).Logger()
	}

	c.logger.Info().
		Int("min", lo).
		Int("max", hi).
		Int("floor", car.Floor()).
		Msg("Controller initialized")
	return c
}

// ID returns the label given WithID.
func (c *Controller) ID() string { return c.id }

// Car returns the driven car.
func (c *Controller) Car() *Car { return c.car }

// Ticks returns how many times Tick has been called.
func (c *Controller) Ticks() uint64 { return c.ticks }

// Window returns the active travel window.
// Window는 현재 허용된 이동 범위를 반환합니다.
func (c *Controller) Window() (int, int) { return c.minFloor, c.maxFloor }

// Pending returns the pending destination, if any.
func (c *Controller) Pending() (Destination, bool) {
	if c.pending == nil {
		return Destination{}, false
	}
	return *c.pending, true
}

// HasNoPendingRequest reports whether the destination slot is empty.
// Requests and calls share the slot, so this equals HasNoPendingCalls.
func (c *Controller) HasNoPendingRequest() bool { return c.pending == nil }

// HasNoPendingCalls reports whether the destination slot is empty.
func (c *Controller) HasNoPendingCalls() bool { return c.pending == nil }

// Request registers a destination chosen inside the car.
// 대기 중인 목표가 있거나 범위를 벗어나면 거부됩니다.
func (c *Controller) Request(floor int) error {
	if err := c.validate(floor); err != nil {
		c.logger.Warn().Err(err).Int("floor", floor).Msg("Request rejected")
		return err
	}

	c.resetWindow()
	c.pending = &Destination{Floor: floor, Origin: OriginRequest}

	c.logger.Info().Int("floor", floor).Msg("Request registered")
	c.publishEvent(EventRequested, *c.pending)
	return nil
}

// Call registers a destination from a floor button together with the
// direction the passenger wants to go. Up raises the lower edge of the
// window to floor, Down lowers the upper edge; the other edge is kept, so
// consecutive calls narrow the window until a Request or Reset.
// Call은 방향 제약이 있는 외부 호출을 등록합니다.
func (c *Controller) Call(floor int, dir Direction) error {
	if dir != DirUp && dir != DirDown {
		err := fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
		c.logger.Warn().Err(err).Int("floor", floor).Msg("Call rejected")
		return err
	}
	if err := c.validate(floor); err != nil {
		c.logger.Warn().Err(err).Int("floor", floor).Str("dir", string(dir)).Msg("Call rejected")
		return err
	}

	lo, hi := c.minFloor, c.maxFloor
	if dir == DirUp {
		lo = floor
	} else {
		hi = floor
	}
	c.setWindow(lo, hi)
	c.pending = &Destination{Floor: floor, Origin: OriginCall, Direction: dir}

	c.logger.Info().Int("floor", floor).Str("dir", string(dir)).Msg("Call registered")
	c.publishEvent(EventCalled, *c.pending)
	return nil
}

// Reset drops the pending destination and restores the global window.
// The car is left where it is.
// Reset은 대기 중인 목표를 지우고 이동 범위를 초기화합니다.
func (c *Controller) Reset() {
	c.logger.Info().Msg("Resetting controller state")
	c.pending = nil
	c.resetWindow()
	c.publishEvent(EventReset, nil)
}

// Decide determines what the next Tick would do, without doing it.
//  1. at the pending floor: open the doors
//  2. doors open elsewhere: close them
//  3. otherwise: move one floor toward the destination
func (c *Controller) Decide() Action {
	if c.pending == nil {
		return Action{Type: ActionNone}
	}
	target := c.pending.Floor

	switch {
	case c.car.IsInFloor(target):
		return Action{Type: ActionOpenDoor, Target: target}
	case c.car.DoorsOpen():
		return Action{Type: ActionCloseDoor, Target: target}
	case c.car.Floor() > target:
		return Action{Type: ActionMoveDown, Target: target}
	default:
		return Action{Type: ActionMoveUp, Target: target}
	}
}

// Tick advances the state machine by one step and returns the action
// taken. It performs at most one Car operation.
// Tick은 상태 기계를 한 단계 진행합니다.
func (c *Controller) Tick() (Action, error) {
	c.ticks++

	action := c.Decide()
	switch action.Type {
	case ActionNone:
		return action, nil

	case ActionOpenDoor:
		c.car.OpenDoors()
		served := *c.pending
		c.pending = nil
		c.logger.Info().Int("floor", served.Floor).Str("origin", string(served.Origin)).Msg("Arrived at floor")
		c.publishEvent(EventDoorChange, DoorChangePayload{Floor: c.car.Floor(), Open: true})
		c.publishEvent(EventArrived, served)

	case ActionCloseDoor:
		c.car.CloseDoors()
		c.logger.Debug().Int("floor", c.car.Floor()).Msg("Doors closed")
		c.publishEvent(EventDoorChange, DoorChangePayload{Floor: c.car.Floor(), Open: false})

	case ActionMoveUp, ActionMoveDown:
		move := c.car.MoveUp
		if action.Type == ActionMoveDown {
			move = c.car.MoveDown
		}
		if err := move(); err != nil {
			c.logger.Error().Err(err).Str("action", action.Type.String()).Msg("Move refused by car")
			return action, err
		}
		c.logger.Debug().Int("floor", c.car.Floor()).Int("target", action.Target).Msg("Moving")
		c.publishEvent(EventFloorChange, c.car.Floor())
	}
	return action, nil
}

// Drain ticks until nothing is pending and returns the number of ticks
// used. It fails with ErrTickLimit after limit ticks.
func (c *Controller) Drain(limit int) (int, error) {
	n := 0
	for c.pending != nil {
		if n >= limit {
			return n, fmt.Errorf("%w: floor %d not served after %d ticks", ErrTickLimit, c.pending.Floor, n)
		}
		if _, err := c.Tick(); err != nil {
			return n + 1, err
		}
		n++
	}
	return n, nil
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		ID:        c.id,
		Tick:      c.ticks,
		Floor:     c.car.Floor(),
		DoorsOpen: c.car.DoorsOpen(),
		WindowMin: c.minFloor,
		WindowMax: c.maxFloor,
	}
	if c.pending != nil {
		d := *c.pending
		s.Pending = &d
	}
	return s
}

// validate checks mutual exclusion first, then the active window.
func (c *Controller) validate(floor int) error {
	if c.pending != nil {
		return fmt.Errorf("%w: %s to floor %d still pending",
			ErrStateConflict, c.pending.Origin, c.pending.Floor)
	}
	return checkRange(floor, c.minFloor, c.maxFloor)
}

func (c *Controller) resetWindow() {
	lo, hi := c.car.Bounds()
	c.setWindow(lo, hi)
}

// setWindow updates the travel window and publishes an event on change.
func (c *Controller) setWindow(lo, hi int) {
	if c.minFloor == lo && c.maxFloor == hi {
		return
	}
	c.minFloor, c.maxFloor = lo, hi
	c.logger.Debug().Int("min", lo).Int("max", hi).Msg("Travel window changed")
	c.publishEvent(EventWindowChange, WindowPayload{Min: lo, Max: hi})
}
