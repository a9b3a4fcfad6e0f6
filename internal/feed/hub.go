// Package feed streams recorded lift frames to browsers over WebSocket.
// The feed is read-only: client messages are read only to notice
// disconnects and are otherwise ignored.
// 이 패키지는 WebSocket을 통해 시뮬레이션 프레임을 읽기 전용으로 전송합니다.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tiendc/go-deepcopy"

	"go-lift-simulator/internal/scenario"
)

// Message types.
const (
	TypeRun   = "run"
	TypeFrame = "frame"
	TypeDone  = "done"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

// ServerMessage is the only payload the feed writes.
type ServerMessage struct {
	Type      string          `json:"type"`
	Session   string          `json:"session,omitempty"`
	RunID     string          `json:"runId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Frame     *scenario.Frame `json:"frame,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Hub keeps the frames of the current run and fans them out to sessions.
// Hub는 현재 실행의 프레임을 보관하고 세션들에게 전파합니다.
type Hub struct {
	mu       sync.Mutex
	runID    string
	name     string
	history  []scenario.Frame
	done     bool
	sessions map[*session]struct{}

	logger            zerolog.Logger
	upgrader          websocket.Upgrader
	droppedFrameCount uint64
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[*session]struct{}),
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}
}

// BeginRun clears the history and announces a new run.
func (h *Hub) BeginRun(runID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runID, h.name = runID, name
	h.history = nil
	h.done = false
	h.broadcast(ServerMessage{Type: TypeRun, RunID: runID, Name: name})
	h.logger.Info().Str("run", runID).Str("name", name).Msg("Run started")
}

// Publish records a frame and sends it to every connected session.
func (h *Hub) Publish(f scenario.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, f)
	h.broadcast(ServerMessage{Type: TypeFrame, RunID: h.runID, Frame: &f})
}

// EndRun marks the run as complete.
func (h *Hub) EndRun() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	h.broadcast(ServerMessage{Type: TypeDone, RunID: h.runID})
	h.logger.Info().Str("run", h.runID).Int("frames", len(h.history)).Msg("Run finished")
}

// Backlog returns a deep copy of the frames recorded so far.
func (h *Hub) Backlog() ([]scenario.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backlogLocked()
}

// backlogLocked copies h.history; attaching sessions read the copy after
// h.mu is released.
func (h *Hub) backlogLocked() ([]scenario.Frame, error) {
	var out []scenario.Frame
	if err := deepcopy.Copy(&out, h.history); err != nil {
		return nil, fmt.Errorf("copy backlog: %w", err)
	}
	return out, nil
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// DroppedFrameCount returns how many messages slow sessions missed.
func (h *Hub) DroppedFrameCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.droppedFrameCount
}

// Replay publishes the transcript frames one per interval, like a tick clock
// driving the recorded run. It returns early when ctx is cancelled.
func (h *Hub) Replay(ctx context.Context, t *scenario.Transcript, interval time.Duration) error {
	h.BeginRun(t.RunID, t.Name)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := range t.Frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.Publish(t.Frames[i])
		}
	}
	h.EndRun()
	return nil
}

// broadcast sends without blocking. Caller holds h.mu.
// 버퍼가 가득 찬 세션의 메시지는 버리고 카운터를 증가시킵니다.
func (h *Hub) broadcast(msg ServerMessage) {
	msg.Timestamp = time.Now().Format("15:04:05")
	for s := range h.sessions {
		m := msg
		m.Session = s.id
		select {
		case s.send <- m:
		default:
			h.droppedFrameCount++
			if h.droppedFrameCount%100 == 1 {
				h.logger.Warn().Uint64("dropped", h.droppedFrameCount).Str("session", s.id).Msg("Session saturated")
			}
		}
	}
}

// ServeHTTP upgrades the connection and streams the run to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan ServerMessage, sendBuffer),
		done: make(chan struct{}),
	}
	initial, err := h.attach(s)
	if err != nil {
		h.logger.Error().Err(err).Msg("Session attach failed")
		_ = conn.Close()
		return
	}
	h.logger.Info().Str("session", s.id).Str("remote_addr", conn.RemoteAddr().String()).Msg("Session started")

	go s.readLoop()
	if err := s.writeBacklog(initial); err != nil {
		h.logger.Warn().Err(err).Str("session", s.id).Msg("Backlog write failed")
	} else {
		s.writeLoop()
	}

	h.detach(s)
	_ = conn.Close()
	h.logger.Info().Str("session", s.id).Msg("Session ended")
}

// attach copies the backlog and registers s under one lock hold, so every
// frame reaches the session exactly once: frames up to now come back as
// the initial messages, later ones queue on s.send until writeLoop runs.
// The caller writes the initial messages after the lock is released.
func (h *Hub) attach(s *session) ([]ServerMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	backlog, err := h.backlogLocked()
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("15:04:05")
	initial := make([]ServerMessage, 0, len(backlog)+2)
	if h.runID != "" {
		initial = append(initial, ServerMessage{Type: TypeRun, RunID: h.runID, Name: h.name})
	}
	for i := range backlog {
		initial = append(initial, ServerMessage{Type: TypeFrame, RunID: h.runID, Frame: &backlog[i]})
	}
	if h.done {
		initial = append(initial, ServerMessage{Type: TypeDone, RunID: h.runID})
	}
	for i := range initial {
		initial[i].Session = s.id
		initial[i].Timestamp = stamp
	}

	h.sessions[s] = struct{}{}
	return initial, nil
}

func (h *Hub) detach(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s)
}
