package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/apptagent/internal/agent"
	"github.com/ziadkadry99/apptagent/internal/business"
)

const defaultSessionID = "default"

// failure is the envelope returned when an operation cannot run.
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

var notConfigured = failure{Error: "Agent not configured. Please configure business first using 'configure_business' tool."}

// stringMap decodes an object argument whose values are strings. Missing
// arguments yield a nil map.
func stringMap(request mcp.CallToolRequest, key string) (map[string]string, error) {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%s must be an object of strings", key)
	}
	return out, nil
}

// handleConfigureBusiness builds a profile from the arguments and makes it
// the active configuration.
func (s *Server) handleConfigureBusiness(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	businessType, err := request.RequireString("business_type")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: business_type"), nil
	}
	businessName, err := request.RequireString("business_name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: business_name"), nil
	}
	assistantName, err := request.RequireString("assistant_name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: assistant_name"), nil
	}
	hours, err := stringMap(request, "working_hours")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hours == nil {
		return mcp.NewToolResultError("missing required parameter: working_hours"), nil
	}

	profile := business.Profile{
		BusinessType:        business.Type(strings.ToLower(businessType)),
		BusinessName:        businessName,
		AssistantName:       assistantName,
		Services:            request.GetStringSlice("services", nil),
		WorkingHours:        hours,
		AppointmentDuration: request.GetInt("appointment_duration", 60),
		BufferTime:          request.GetInt("buffer_time", 0),
		Timezone:            request.GetString("timezone", business.DefaultTimezone),
		RequiredFields:      request.GetStringSlice("required_fields", nil),
		CalendarID:          request.GetString("calendar_id", "primary"),
		SheetID:             request.GetString("sheet_id", ""),
	}

	a, err := s.host.Configure(ctx, profile)
	if err != nil {
		return jsonResult(failure{Error: err.Error(), Message: "Failed to configure agent"})
	}
	p := a.Profile()
	return jsonResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Agent configured successfully for %s", p.BusinessName),
		"configuration": map[string]any{
			"business_type":        p.BusinessType,
			"business_name":        p.BusinessName,
			"assistant_name":       p.AssistantName,
			"services":             p.Services,
			"appointment_duration": p.AppointmentDuration,
			"timezone":             p.Timezone,
			"required_fields":      p.RequiredFields,
		},
	})
}

// handleChatWithAgent runs one conversation turn.
func (s *Server) handleChatWithAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}

	res := a.Chat(ctx, message, request.GetString("session_id", defaultSessionID))
	return jsonResult(map[string]any{
		"success":  true,
		"response": res.Reply,
		"conversation_status": map[string]any{
			"stage":              res.Stage,
			"context":            res.Summary,
			"appointment_booked": res.AppointmentBooked,
			"event_id":           res.EventID,
			"collected_fields":   res.CollectedFields,
			"missing_fields":     res.MissingFields,
		},
		"session_id": res.SessionID,
	})
}

// handleCheckAvailability lists the free slots of a day.
func (s *Server) handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	return jsonResult(a.CheckAvailability(ctx, date, request.GetInt("duration", 0)))
}

// handleBookAppointmentDirect books without a conversation.
func (s *Server) handleBookAppointmentDirect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	slot, err := request.RequireString("time_slot")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: time_slot"), nil
	}
	customer, err := stringMap(request, "customer_info")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if customer == nil {
		return mcp.NewToolResultError("missing required parameter: customer_info"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}

	return jsonResult(a.BookDirect(ctx, agent.DirectBooking{
		Date:         date,
		Slot:         slot,
		CustomerInfo: customer,
		Summary:      request.GetString("summary", ""),
	}))
}

// handleGetAgentStatus reports the active configuration.
func (s *Server) handleGetAgentStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.host.Status())
}

// handleGetConversationStatus reports on one session.
func (s *Server) handleGetConversationStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	return jsonResult(a.ConversationStatus(request.GetString("session_id", defaultSessionID)))
}

// handleResetConversation forgets one session.
func (s *Server) handleResetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	sessionID := request.GetString("session_id", defaultSessionID)
	a.ResetSession(sessionID)
	return jsonResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Conversation reset for session: %s", sessionID),
	})
}

// handleCancelAppointment deletes a booking.
func (s *Server) handleCancelAppointment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: event_id"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	return jsonResult(a.CancelBooking(ctx, eventID))
}

// handleGetAppointment fetches a booking.
func (s *Server) handleGetAppointment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: event_id"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	return jsonResult(a.GetBooking(ctx, eventID))
}

// handleGetBusinessInfo describes the configured business.
func (s *Server) handleGetBusinessInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(map[string]any{"configured": false, "message": "No business configured"})
	}
	return jsonResult(a.BusinessInfo())
}

// handleGetCustomerHistory looks up stored customer records.
func (s *Server) handleGetCustomerHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone := request.GetString("phone", "")
	name := request.GetString("name", "")
	if phone == "" && name == "" {
		return mcp.NewToolResultError("provide phone or name"), nil
	}
	a, err := s.host.Agent()
	if err != nil {
		return jsonResult(notConfigured)
	}
	return jsonResult(a.CustomerHistory(ctx, phone, name))
}
