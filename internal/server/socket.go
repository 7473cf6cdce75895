package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/agent"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// socketRequest is the incoming WebSocket message format.
type socketRequest struct {
	SessionID string `json:"session_id"` // empty for new sessions
	Message   string `json:"message"`
}

// socketResponse is the outgoing WebSocket message format.
type socketResponse struct {
	Type      string            `json:"type"` // "response" or "error"
	SessionID string            `json:"session_id"`
	Error     string            `json:"error,omitempty"`
	Result    *agent.ChatResult `json:"result,omitempty"`
}

// handleChatSocket runs conversation turns over a WebSocket. A connection
// keeps the session of its first turn unless a message names another one.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.metrics.SocketOpened()
	defer s.metrics.SocketClosed()

	sessionID := ""
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req socketRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, socketResponse{Type: "error", SessionID: sessionID, Error: "invalid message format"})
			continue
		}
		if req.SessionID != "" {
			sessionID = req.SessionID
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		if strings.TrimSpace(req.Message) == "" {
			s.send(conn, socketResponse{Type: "error", SessionID: sessionID, Error: "message is required"})
			continue
		}

		a, err := s.host.Agent()
		if err != nil {
			s.send(conn, socketResponse{Type: "error", SessionID: sessionID, Error: "agent not configured"})
			continue
		}
		res := a.Chat(r.Context(), req.Message, sessionID)
		s.send(conn, socketResponse{Type: "response", SessionID: sessionID, Result: &res})
	}
}

func (s *Server) send(conn *websocket.Conn, resp socketResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.log.Warn("websocket write failed", zap.Error(err))
	}
}
