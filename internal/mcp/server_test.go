package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/apptagent/internal/agent"
	"github.com/ziadkadry99/apptagent/internal/db"
	"github.com/ziadkadry99/apptagent/internal/llm"
)

type stubLLM struct{}

func (stubLLM) Name() string { return "stub" }

func (stubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "Happy to help."}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	now := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	host := agent.NewHost(&agent.Backends{
		Calendar: agent.BackendLocal,
		Records:  agent.BackendLocal,
		DB:       database,
		LLM:      stubLLM{},
	}, agent.Options{Now: now})
	return NewServer(host, nil)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		return result, nil
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, text.Text)
	}
	return result, out
}

func configureArgs() map[string]any {
	return map[string]any{
		"business_type":  "dentist",
		"business_name":  "Bright Smiles",
		"assistant_name": "Emily",
		"services":       []any{"Cleanings", "Fillings"},
		"working_hours": map[string]any{
			"monday": "08:00-17:00", "tuesday": "08:00-17:00", "wednesday": "08:00-17:00",
			"thursday": "08:00-17:00", "friday": "08:00-16:00", "saturday": "", "sunday": "",
		},
	}
}

func configure(t *testing.T, srv *Server) {
	t.Helper()
	_, out := call(t, srv.handleConfigureBusiness, configureArgs())
	if out["success"] != true {
		t.Fatalf("configure failed: %v", out)
	}
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{configureBusinessTool, "configure_business"},
		{chatWithAgentTool, "chat_with_agent"},
		{checkAvailabilityTool, "check_availability"},
		{bookAppointmentDirectTool, "book_appointment_direct"},
		{getAgentStatusTool, "get_agent_status"},
		{getConversationStatusTool, "get_conversation_status"},
		{resetConversationTool, "reset_conversation"},
		{cancelAppointmentTool, "cancel_appointment"},
		{getAppointmentTool, "get_appointment"},
		{getBusinessInfoTool, "get_business_info"},
		{getCustomerHistoryTool, "get_customer_history"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandlersBeforeConfigure(t *testing.T) {
	srv := newTestServer(t)

	_, out := call(t, srv.handleChatWithAgent, map[string]any{"message": "hi"})
	if out["success"] != false || !strings.Contains(out["error"].(string), "configure_business") {
		t.Errorf("unexpected chat result %v", out)
	}
	_, out = call(t, srv.handleGetAgentStatus, map[string]any{})
	if out["configured"] != false {
		t.Errorf("unexpected status %v", out)
	}
	_, out = call(t, srv.handleGetBusinessInfo, map[string]any{})
	if out["configured"] != false {
		t.Errorf("unexpected business info %v", out)
	}
}

func TestHandleConfigureBusiness(t *testing.T) {
	srv := newTestServer(t)

	_, out := call(t, srv.handleConfigureBusiness, configureArgs())
	if out["message"] != "Agent configured successfully for Bright Smiles" {
		t.Errorf("unexpected result %v", out)
	}
	cfg := out["configuration"].(map[string]any)
	if cfg["appointment_duration"] != float64(60) || cfg["timezone"] != "America/New_York" {
		t.Errorf("defaults not applied: %v", cfg)
	}

	t.Run("invalid hours", func(t *testing.T) {
		args := configureArgs()
		args["working_hours"] = map[string]any{"monday": "9am-5pm"}
		_, out := call(t, srv.handleConfigureBusiness, args)
		if out["success"] != false || out["message"] != "Failed to configure agent" {
			t.Errorf("expected failure envelope, got %v", out)
		}
	})

	t.Run("missing business type", func(t *testing.T) {
		args := configureArgs()
		delete(args, "business_type")
		result, _ := call(t, srv.handleConfigureBusiness, args)
		if !result.IsError {
			t.Error("expected a tool error")
		}
	})
}

func TestHandleChatWithAgent(t *testing.T) {
	srv := newTestServer(t)
	configure(t, srv)

	_, out := call(t, srv.handleChatWithAgent, map[string]any{"message": "Hello there"})
	if out["response"] != "Happy to help." || out["session_id"] != "default" {
		t.Errorf("unexpected result %v", out)
	}
	status := out["conversation_status"].(map[string]any)
	if status["stage"] != "active" {
		t.Errorf("unexpected stage %v", status["stage"])
	}

	_, out = call(t, srv.handleGetConversationStatus, map[string]any{})
	if out["status"] != "active" {
		t.Errorf("unexpected conversation status %v", out)
	}

	_, out = call(t, srv.handleResetConversation, map[string]any{})
	if out["message"] != "Conversation reset for session: default" {
		t.Errorf("unexpected reset result %v", out)
	}
	_, out = call(t, srv.handleGetConversationStatus, map[string]any{})
	if out["status"] != "new" {
		t.Errorf("session should be new after reset, got %v", out)
	}

	result, _ := call(t, srv.handleChatWithAgent, map[string]any{})
	if !result.IsError {
		t.Error("expected a tool error for a missing message")
	}
}

func TestHandleBookingLifecycle(t *testing.T) {
	srv := newTestServer(t)
	configure(t, srv)

	_, out := call(t, srv.handleCheckAvailability, map[string]any{"date": "2024-01-02"})
	if out["success"] != true || len(out["available_slots"].([]any)) != 9 {
		t.Fatalf("unexpected availability %v", out)
	}

	_, out = call(t, srv.handleBookAppointmentDirect, map[string]any{
		"date":          "2024-01-02",
		"time_slot":     "09:00-10:00",
		"customer_info": map[string]any{"name": "Jane Doe", "phone": "5551234567"},
	})
	if out["success"] != true {
		t.Fatalf("booking failed: %v", out)
	}
	eventID := out["event_id"].(string)

	_, out = call(t, srv.handleCheckAvailability, map[string]any{"date": "2024-01-02"})
	if len(out["available_slots"].([]any)) != 8 {
		t.Errorf("booked slot should no longer be available: %v", out["available_slots"])
	}

	_, out = call(t, srv.handleBookAppointmentDirect, map[string]any{
		"date":          "2024-01-02",
		"time_slot":     "09:30-10:30",
		"customer_info": map[string]any{"name": "John Roe"},
	})
	if out["success"] != false {
		t.Errorf("overlapping booking should fail: %v", out)
	}

	_, out = call(t, srv.handleGetAppointment, map[string]any{"event_id": eventID})
	if out["success"] != true {
		t.Errorf("lookup failed: %v", out)
	}

	_, out = call(t, srv.handleGetCustomerHistory, map[string]any{"phone": "5551234567"})
	if out["success"] != true || len(out["records"].([]any)) != 1 {
		t.Errorf("unexpected history %v", out)
	}

	_, out = call(t, srv.handleCancelAppointment, map[string]any{"event_id": eventID})
	if out["success"] != true {
		t.Errorf("cancel failed: %v", out)
	}
	_, out = call(t, srv.handleCancelAppointment, map[string]any{"event_id": eventID})
	if out["success"] != false {
		t.Errorf("second cancel should fail: %v", out)
	}
}

func TestHandleBookAppointmentDirectValidation(t *testing.T) {
	srv := newTestServer(t)
	configure(t, srv)

	result, _ := call(t, srv.handleBookAppointmentDirect, map[string]any{"date": "2024-01-02", "time_slot": "09:00-10:00"})
	if !result.IsError {
		t.Error("missing customer_info should be a tool error")
	}
	result, _ = call(t, srv.handleBookAppointmentDirect, map[string]any{
		"date": "2024-01-02", "time_slot": "09:00-10:00", "customer_info": "Jane",
	})
	if !result.IsError {
		t.Error("non-object customer_info should be a tool error")
	}
	result, _ = call(t, srv.handleGetCustomerHistory, map[string]any{})
	if !result.IsError {
		t.Error("history without phone or name should be a tool error")
	}
}
