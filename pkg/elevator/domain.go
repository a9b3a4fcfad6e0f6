package elevator

import (
	"errors"
	"fmt"
	"strings"
)

// --- Domain Entities & Value Objects ---

// Default floor bounds of a car.
// 기본 층 범위입니다.
const (
	MinFloor = 1
	MaxFloor = 10
)

// Direction indicates the vertical direction a call wants to travel.
// Direction은 호출이 원하는 수직 이동 방향을 나타냅니다.
type Direction string

const (
	DirUp   Direction = "Up"
	DirDown Direction = "Down"
)

// ParseDirection accepts "up"/"down" in any case, plus the short forms "u"/"d".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return DirUp, nil
	case "down", "d":
		return DirDown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Config holds the static floor layout of a car.
// Config는 엘리베이터의 정적 층 설정입니다.
type Config struct {
	MinFloor     int // 최저 층
	MaxFloor     int // 최고 층
	InitialFloor int // 초기 층
}

// DefaultConfig returns the 1..10 layout with the car parked at floor 1.
func DefaultConfig() Config {
	return Config{
		MinFloor:     MinFloor,
		MaxFloor:     MaxFloor,
		InitialFloor: MinFloor,
	}
}

// Validate checks the layout. Floors are 1-based, so MinFloor must be at least 1.
// Validate는 잘못된 설정(예: Min > Max)을 즉시 거부합니다.
func (c Config) Validate() error {
	if c.MinFloor < 1 {
		return fmt.Errorf("%w: MinFloor (%d) < 1", ErrInvalidConfig, c.MinFloor)
	}
	if c.MinFloor > c.MaxFloor {
		return fmt.Errorf("%w: MinFloor (%d) > MaxFloor (%d)", ErrInvalidConfig, c.MinFloor, c.MaxFloor)
	}
	if c.InitialFloor < c.MinFloor || c.InitialFloor > c.MaxFloor {
		return fmt.Errorf("%w: InitialFloor (%d) outside [%d, %d]",
			ErrInvalidConfig, c.InitialFloor, c.MinFloor, c.MaxFloor)
	}
	return nil
}

// --- Errors ---

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("floor out of range")
	// ErrStateConflict reports an operation that clashes with the current state,
	// such as moving with open doors or requesting while a destination is pending.
	ErrStateConflict = errors.New("state conflict")
	// ErrInvalidConfig is returned by constructors.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidDirection rejects calls with a direction other than Up or Down.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrTickLimit is returned by Drain when the destination is not served in time.
	ErrTickLimit = errors.New("tick limit reached")
)

// RangeError carries the offending floor and the bounds it violated.
// RangeError는 범위를 벗어난 층과 허용 범위를 담고 있습니다.
type RangeError struct {
	Floor int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("floor %d out of range [%d, %d]", e.Floor, e.Min, e.Max)
}

// Is lets errors.Is(err, ErrOutOfRange) match.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func checkRange(floor, lo, hi int) error {
	if floor < lo || floor > hi {
		return &RangeError{Floor: floor, Min: lo, Max: hi}
	}
	return nil
}

// --- Decisions ---

// ActionType defines the single car operation chosen for a tick.
// ActionType은 한 틱에서 선택된 동작을 정의합니다.
type ActionType int

const (
	ActionNone      ActionType = iota
	ActionOpenDoor             // 도착: 문 열기
	ActionCloseDoor            // 이동 전 문 닫기
	ActionMoveUp               // 한 층 위로
	ActionMoveDown             // 한 층 아래로
)

var actionNames = [...]string{"None", "OpenDoor", "CloseDoor", "MoveUp", "MoveDown"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("ActionType(%d)", int(a))
	}
	return actionNames[a]
}

// Action represents the decision made for one tick.
// Action은 한 틱에 대한 결정을 나타냅니다.
type Action struct {
	Type   ActionType
	Target int // pending floor the action serves, 0 for ActionNone
}

// Origin tells whether a destination came from inside the car or from a floor.
type Origin string

const (
	OriginRequest Origin = "Request"
	OriginCall    Origin = "Call"
)

// Destination is the single pending target of the controller.
// Destination은 컨트롤러의 대기 중인 목표 층입니다.
type Destination struct {
	Floor     int       `json:"floor" yaml:"floor"`
	Origin    Origin    `json:"origin" yaml:"origin"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"` // empty for requests
}

// Snapshot is a copy of the observable controller and car state.
// Snapshot은 관찰 가능한 상태의 복사본입니다.
type Snapshot struct {
	ID        string       `json:"id,omitempty"`
	Tick      uint64       `json:"tick"`
	Floor     int          `json:"floor"`
	DoorsOpen bool         `json:"doorsOpen"`
	Pending   *Destination `json:"pending,omitempty"`
	WindowMin int          `json:"windowMin"`
	WindowMax int          `json:"windowMax"`
}

// Idle reports whether no destination is pending.
func (s Snapshot) Idle() bool { return s.Pending == nil }
