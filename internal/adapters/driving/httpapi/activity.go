package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/websocket"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Activity feed defaults.
const (
	defaultRecentActivity = 50
	wsWriteTimeout        = 10 * time.Second
)

// streamMessage is one frame on the activity WebSocket.
type streamMessage struct {
	Type     string           `json:"type"`
	Activity *domain.Activity `json:"activity,omitempty"`
	Health   *domain.Health   `json:"health,omitempty"`
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	if s.ports.Activity == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	n := defaultRecentActivity
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be a positive integer"})
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, s.ports.Activity.Recent(n))
}

// handleActivityStream sends a health frame and the recent backlog, then
// every new event until the client goes away or the server shuts down.
func (s *Server) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	if s.ports.Activity == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	ws := websocket.Server{Handler: s.streamActivity}
	ws.ServeHTTP(w, r)
}

func (s *Server) streamActivity(conn *websocket.Conn) {
	defer conn.Close()

	events, unsubscribe := s.ports.Activity.Subscribe()
	defer unsubscribe()

	// Reads only detect the client closing the socket.
	gone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		close(gone)
	}()

	health := s.ports.Activity.Health(conn.Request().Context())
	if err := s.send(conn, streamMessage{Type: "health", Health: &health}); err != nil {
		return
	}
	for _, a := range s.ports.Activity.Recent(defaultRecentActivity) {
		if err := s.send(conn, streamMessage{Type: "activity", Activity: &a}); err != nil {
			return
		}
	}

	for {
		select {
		case a, ok := <-events:
			if !ok {
				return
			}
			if err := s.send(conn, streamMessage{Type: "activity", Activity: &a}); err != nil {
				logger.Debug("http: activity stream: %v", err)
				return
			}
		case <-gone:
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg streamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(conn, msg)
}
