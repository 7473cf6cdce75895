package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/agent"
	"github.com/ziadkadry99/apptagent/internal/business"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// activeAgent writes a 503 and returns nil when no business is configured.
func (s *Server) activeAgent(w http.ResponseWriter) *agent.Agent {
	a, err := s.host.Agent()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "agent not configured: POST /api/configure first")
		return nil
	}
	return a
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var profile business.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := s.host.Configure(r.Context(), profile)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, business.ErrInvalidProfile) {
			status = http.StatusBadRequest
		}
		s.log.Warn("configure failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"configuration": a.BusinessInfo(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.host.Status())
}

func (s *Server) handleBusinessInfo(w http.ResponseWriter, r *http.Request) {
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, a.BusinessInfo())
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, a.Chat(r.Context(), req.Message, req.SessionID))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	duration := 0
	if v := r.URL.Query().Get("duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
			return
		}
		duration = n
	}
	a := s.activeAgent(w)
	if a == nil {
		return
	}

	res := a.CheckAvailability(r.Context(), date, duration)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req agent.DirectBooking
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" || req.Slot == "" {
		writeError(w, http.StatusBadRequest, "date and time_slot are required")
		return
	}
	a := s.activeAgent(w)
	if a == nil {
		return
	}

	res := a.BookDirect(r.Context(), req)
	status := http.StatusCreated
	if !res.Success {
		status = http.StatusConflict
	}
	writeJSON(w, status, res)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	res := a.GetBooking(r.Context(), chi.URLParam(r, "id"))
	status := http.StatusOK
	if !res.Success {
		status = http.StatusNotFound
	}
	writeJSON(w, status, res)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	res := a.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	status := http.StatusOK
	if !res.Success {
		status = http.StatusNotFound
	}
	writeJSON(w, status, res)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	writeJSON(w, http.StatusOK, a.ConversationStatus(chi.URLParam(r, "id")))
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !a.ResetSession(id) {
		writeError(w, http.StatusNotFound, "unknown session: "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": id})
}

func (s *Server) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	phone, name := r.URL.Query().Get("phone"), r.URL.Query().Get("name")
	if phone == "" && name == "" {
		writeError(w, http.StatusBadRequest, "phone or name is required")
		return
	}
	a := s.activeAgent(w)
	if a == nil {
		return
	}
	res := a.CustomerHistory(r.Context(), phone, name)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
