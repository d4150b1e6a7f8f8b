package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nguyentantai21042004/study-flow/internal/processor"
	"github.com/nguyentantai21042004/study-flow/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sessionEvents streams progress events over a websocket until the session ends.
func (s *Server) sessionEvents(c *gin.Context) {
	sess, ok := s.loadSession(c)
	if !ok {
		return
	}
	ctx := requestContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(ctx, "WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	history, events, cancel, tracked := s.hub.Subscribe(sess.ID)
	defer cancel()

	if !tracked {
		// nothing in memory, e.g. after a restart: report what the store knows
		_ = s.write(conn, statusEvent(sess))
		s.closeNormal(conn)
		return
	}

	for _, ev := range history {
		if err := s.write(conn, ev); err != nil {
			return
		}
	}

	// the read loop only notices the client going away
	gone := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				s.closeNormal(conn)
				return
			}
			if err := s.write(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, ev processor.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func (s *Server) closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// statusEvent describes a stored session as a single event.
func statusEvent(sess session.Session) processor.Event {
	ev := processor.Event{Time: sess.UpdatedAt}
	switch sess.Status {
	case session.StatusCompleted:
		ev.Stage, ev.Message = processor.StageCompleted, "Study material ready"
	case session.StatusFailed:
		ev.Stage, ev.Message = processor.StageFailed, sess.Error
	default:
		ev.Stage, ev.Message = processor.StageQueued, string(sess.Status)
	}
	return ev
}
