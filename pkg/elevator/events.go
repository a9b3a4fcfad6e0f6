package elevator

// EventType represents the category of a controller event.
// EventType은 컨트롤러 이벤트의 카테고리를 나타냅니다.
type EventType string

const (
	EventRequested    EventType = "Requested"
	EventCalled       EventType = "Called"
	EventFloorChange  EventType = "FloorChange"
	EventDoorChange   EventType = "DoorChange"
	EventArrived      EventType = "Arrived"
	EventWindowChange EventType = "WindowChange"
	EventReset        EventType = "Reset"
)

// Event carries one state change. Tick is Controller.Ticks() at the moment
// the event was raised; the core has no wall clock.
// Event는 상태 변화 정보를 담고 있습니다.
type Event struct {
	Type    EventType
	Payload any
	Tick    uint64
}

// DoorChangePayload carries detail for door events.
type DoorChangePayload struct {
	Floor int
	Open  bool
}

// WindowPayload carries the travel window after a change.
type WindowPayload struct {
	Min int
	Max int
}

const defaultEventBuffer = 256

// publishEvent sends an event without blocking the tick.
// 채널이 가득 차면 이벤트를 버리고 카운터를 증가시킵니다.
func (c *Controller) publishEvent(eventType EventType, payload any) {
	if c.eventCh == nil {
		return
	}
	event := Event{
		Type:    eventType,
		Payload: payload,
		Tick:    c.ticks,
	}

	select {
	case c.eventCh <- event:
	default:
		c.droppedEventCount++
		if c.droppedEventCount%100 == 1 {
			c.logger.Error().
				Uint64("dropped", c.droppedEventCount).
				Str("type", string(eventType)).
				Msg("Event channel saturated")
		}
	}
}

// Events returns the read-only channel for state change notifications.
// It is nil when the controller was built WithEventBuffer(0).
// Events는 상태 변경 알림을 위한 읽기 전용 채널을 반환합니다.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// DroppedEventCount returns how many events were lost to a full buffer.
func (c *Controller) DroppedEventCount() uint64 {
	return c.droppedEventCount
}
