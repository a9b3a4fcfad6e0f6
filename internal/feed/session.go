package feed

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

var errPeerGone = errors.New("peer disconnected")

// session is one WebSocket viewer.
type session struct {
	id   string
	conn *websocket.Conn
	send chan ServerMessage
	done chan struct{} // closed by readLoop when the peer goes away
}

// readLoop drains client messages until the connection fails. Viewers
// cannot steer the run, so the content is discarded.
func (s *session) readLoop() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeBacklog sends the messages recorded before the session joined.
// It may take a while on a slow peer; live frames wait in s.send meanwhile.
func (s *session) writeBacklog(msgs []ServerMessage) error {
	for _, m := range msgs {
		select {
		case <-s.done:
			return errPeerGone
		default:
		}
		if err := s.write(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			if err := s.write(msg); err != nil {
				return
			}
		}
	}
}

func (s *session) write(msg ServerMessage) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}
