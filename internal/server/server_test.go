package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/apptagent/internal/agent"
	"github.com/ziadkadry99/apptagent/internal/db"
	"github.com/ziadkadry99/apptagent/internal/llm"
	"github.com/ziadkadry99/apptagent/internal/metrics"
)

type stubLLM struct{}

func (stubLLM) Name() string { return "stub" }

func (stubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "Sure, let me help.", InputTokens: 10, OutputTokens: 4}, nil
}

const profileJSON = `{
	"business_type": "salon",
	"business_name": "Cut Above",
	"assistant_name": "Maya",
	"services": ["Haircut", "Coloring"],
	"working_hours": {"monday": "09:00-17:00", "tuesday": "09:00-17:00", "wednesday": "09:00-17:00",
		"thursday": "09:00-17:00", "friday": "09:00-17:00", "saturday": "", "sunday": ""},
	"timezone": "UTC"
}`

func newTestServer(t *testing.T) (*Server, *metrics.Recorder) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	rec := metrics.New()
	now := func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	host := agent.NewHost(&agent.Backends{
		Calendar: agent.BackendLocal,
		Records:  agent.BackendLocal,
		DB:       database,
		LLM:      stubLLM{},
	}, agent.Options{Now: now, Metrics: rec})
	return New(Config{Port: 0}, host, nil, rec), rec
}

func do(t *testing.T, srv *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal %s %s: %v", method, path, err)
		}
	}
	return w, out
}

func configure(t *testing.T, srv *Server) {
	t.Helper()
	w, out := do(t, srv, http.MethodPost, "/api/configure", profileJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("configure: expected 200, got %d: %v", w.Code, out)
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	w, body := do(t, srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if w.Header().Get(correlationHeader) == "" {
		t.Error("expected a correlation id header")
	}
}

func TestCORSHeaders(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	host := agent.NewHost(&agent.Backends{DB: database}, agent.Options{})
	srv := New(Config{Port: 0, AllowAll: true}, host, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	w, body := do(t, srv, http.MethodPost, "/api/chat", `{"message": "hi"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if body["success"] != false {
		t.Errorf("unexpected body %v", body)
	}

	w, body = do(t, srv, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK || body["configured"] != false {
		t.Errorf("unexpected status %d %v", w.Code, body)
	}
}

func TestConfigure(t *testing.T) {
	srv, _ := newTestServer(t)

	w, body := do(t, srv, http.MethodPost, "/api/configure", profileJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", w.Code, body)
	}
	cfg := body["configuration"].(map[string]any)
	if cfg["business_name"] != "Cut Above" || cfg["appointment_duration"] != float64(60) {
		t.Errorf("unexpected configuration %v", cfg)
	}

	w, _ = do(t, srv, http.MethodPost, "/api/configure", `{"business_type": "bakery"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid profile: expected 400, got %d", w.Code)
	}
	w, _ = do(t, srv, http.MethodPost, "/api/configure", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", w.Code)
	}

	w, body = do(t, srv, http.MethodGet, "/api/status", "")
	if body["configured"] != true || body["business_name"] != "Cut Above" || body["llm_provider"] != "stub" {
		t.Errorf("status after failed reconfigure should keep the first profile: %v", body)
	}
}

func TestChatAndSessions(t *testing.T) {
	srv, _ := newTestServer(t)
	configure(t, srv)

	w, body := do(t, srv, http.MethodPost, "/api/chat", `{"message": "Hello", "session_id": "s1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["response"] != "Sure, let me help." || body["session_id"] != "s1" {
		t.Errorf("unexpected chat result %v", body)
	}

	w, _ = do(t, srv, http.MethodPost, "/api/chat", `{"message": "  "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank message: expected 400, got %d", w.Code)
	}

	_, body = do(t, srv, http.MethodGet, "/api/sessions/s1", "")
	if body["status"] != "active" || body["messages"] != float64(2) {
		t.Errorf("unexpected session status %v", body)
	}

	w, _ = do(t, srv, http.MethodDelete, "/api/sessions/s1", "")
	if w.Code != http.StatusOK {
		t.Errorf("reset: expected 200, got %d", w.Code)
	}
	w, _ = do(t, srv, http.MethodDelete, "/api/sessions/s1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second reset: expected 404, got %d", w.Code)
	}
	_, body = do(t, srv, http.MethodGet, "/api/sessions/s1", "")
	if body["status"] != "new" {
		t.Errorf("expected a new session, got %v", body)
	}
}

func TestConcurrentTurnsOnOneSession(t *testing.T) {
	srv, _ := newTestServer(t)
	configure(t, srv)

	const n = 20
	codes := make(chan int, 2*n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/chat",
				strings.NewReader(`{"message": "My name is Ann Lee, call me at 555-123-4567", "session_id": "s1"}`))
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			codes <- w.Code
		}()
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/s1", nil))
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Errorf("expected 200, got %d", code)
		}
	}

	_, body := do(t, srv, http.MethodGet, "/api/sessions/s1", "")
	if body["messages"] != float64(2*n) {
		t.Errorf("expected %d messages, got %v", 2*n, body["messages"])
	}
}

func TestBookingLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	configure(t, srv)

	w, body := do(t, srv, http.MethodGet, "/api/availability?date=2024-01-02", "")
	if w.Code != http.StatusOK {
		t.Fatalf("availability: expected 200, got %d", w.Code)
	}
	if n := len(body["available_slots"].([]any)); n != 8 {
		t.Errorf("expected 8 slots, got %d", n)
	}
	w, _ = do(t, srv, http.MethodGet, "/api/availability?date=2024-01-02&duration=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad duration: expected 400, got %d", w.Code)
	}

	booking := `{"date": "2024-01-02", "time_slot": "10:00-11:00", "customer_info": {"name": "Ana Lima", "phone": "5550001111"}}`
	w, body = do(t, srv, http.MethodPost, "/api/bookings", booking)
	if w.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d: %v", w.Code, body)
	}
	eventID := body["event_id"].(string)

	w, _ = do(t, srv, http.MethodPost, "/api/bookings", booking)
	if w.Code != http.StatusConflict {
		t.Errorf("double booking: expected 409, got %d", w.Code)
	}

	w, body = do(t, srv, http.MethodGet, "/api/bookings/"+eventID, "")
	if w.Code != http.StatusOK || body["success"] != true {
		t.Errorf("get booking: %d %v", w.Code, body)
	}

	w, body = do(t, srv, http.MethodGet, "/api/customers?phone=5550001111", "")
	if w.Code != http.StatusOK || len(body["records"].([]any)) != 1 {
		t.Errorf("customer history: %d %v", w.Code, body)
	}
	w, _ = do(t, srv, http.MethodGet, "/api/customers", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("history without filter: expected 400, got %d", w.Code)
	}

	w, _ = do(t, srv, http.MethodDelete, "/api/bookings/"+eventID, "")
	if w.Code != http.StatusOK {
		t.Errorf("cancel: expected 200, got %d", w.Code)
	}
	w, _ = do(t, srv, http.MethodGet, "/api/bookings/"+eventID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("cancelled booking: expected 404, got %d", w.Code)
	}
	w, _ = do(t, srv, http.MethodDelete, "/api/bookings/"+eventID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second cancel: expected 404, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	configure(t, srv)
	do(t, srv, http.MethodPost, "/api/chat", `{"message": "Hello", "session_id": "m1"}`)

	w, _ := do(t, srv, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	text := w.Body.String()
	for _, want := range []string{
		`apptagent_http_request_duration_seconds_count{method="POST",route="/api/chat",status="200"} 1`,
		`apptagent_turns_total{stage="active"} 1`,
		`apptagent_llm_tokens_total{direction="in",provider="stub"} 10`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestChatSocket(t *testing.T) {
	srv, rec := newTestServer(t)
	configure(t, srv)

	server := httptest.NewServer(srv.Router())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	send := func(v string) socketResponse {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(v)); err != nil {
			t.Fatalf("write: %v", err)
		}
		var resp socketResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		return resp
	}

	first := send(`{"message": "Hello"}`)
	if first.Type != "response" || first.SessionID == "" || first.Result == nil {
		t.Fatalf("unexpected first response %+v", first)
	}
	if first.Result.Reply != "Sure, let me help." {
		t.Errorf("unexpected reply %q", first.Result.Reply)
	}

	second := send(`{"message": "Do you do coloring?"}`)
	if second.SessionID != first.SessionID {
		t.Errorf("socket should keep its session: %q vs %q", second.SessionID, first.SessionID)
	}

	if bad := send(`{oops`); bad.Type != "error" {
		t.Errorf("expected error for malformed message, got %+v", bad)
	}
	if empty := send(`{"message": ""}`); empty.Type != "error" {
		t.Errorf("expected error for empty message, got %+v", empty)
	}

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "apptagent_websocket_connections_active 1") {
		t.Error("expected one open socket in metrics")
	}
}
