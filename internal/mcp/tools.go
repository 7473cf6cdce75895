package mcp

import "github.com/mark3labs/mcp-go/mcp"

func hoursProperty(day string) map[string]any {
	return map[string]any{"type": "string", "description": day + " hours in HH:MM-HH:MM format, empty for closed"}
}

// configureBusinessTool defines the configure_business MCP tool.
var configureBusinessTool = mcp.NewTool("configure_business",
	mcp.WithDescription("Configure the appointment agent for a specific business type and settings. Replaces any previous configuration; existing conversations are kept."),
	mcp.WithString("business_type",
		mcp.Required(),
		mcp.Description("Type of business for the appointment agent"),
		mcp.Enum("dentist", "salon", "doctor", "spa", "lawyer", "generic"),
	),
	mcp.WithString("business_name",
		mcp.Required(),
		mcp.Description("Name of the business"),
	),
	mcp.WithString("assistant_name",
		mcp.Required(),
		mcp.Description("Name of the assistant"),
	),
	mcp.WithArray("services",
		mcp.Required(),
		mcp.Description("Services offered by the business"),
		mcp.WithStringItems(),
	),
	mcp.WithObject("working_hours",
		mcp.Required(),
		mcp.Description("Working hours for each day of the week"),
		mcp.Properties(map[string]any{
			"monday":    hoursProperty("Monday"),
			"tuesday":   hoursProperty("Tuesday"),
			"wednesday": hoursProperty("Wednesday"),
			"thursday":  hoursProperty("Thursday"),
			"friday":    hoursProperty("Friday"),
			"saturday":  hoursProperty("Saturday"),
			"sunday":    hoursProperty("Sunday"),
		}),
	),
	mcp.WithNumber("appointment_duration",
		mcp.Description("Appointment duration in minutes (default 60)"),
	),
	mcp.WithNumber("buffer_time",
		mcp.Description("Minutes left free between consecutive slots (default 0)"),
	),
	mcp.WithString("timezone",
		mcp.Description("IANA timezone of the business (default America/New_York)"),
	),
	mcp.WithArray("required_fields",
		mcp.Description("Customer fields to collect before booking (defaults depend on business type)"),
		mcp.WithStringItems(),
	),
	mcp.WithString("calendar_id",
		mcp.Description("Calendar ID (default primary)"),
	),
	mcp.WithString("sheet_id",
		mcp.Description("Spreadsheet ID for customer records (optional)"),
	),
)

// chatWithAgentTool defines the chat_with_agent MCP tool.
var chatWithAgentTool = mcp.NewTool("chat_with_agent",
	mcp.WithDescription("Have a natural conversation with the appointment agent for booking appointments."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The customer's message to the appointment agent"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session ID that keeps conversation context across messages (default \"default\")"),
	),
)

// checkAvailabilityTool defines the check_availability MCP tool.
var checkAvailabilityTool = mcp.NewTool("check_availability",
	mcp.WithDescription("Check available appointment slots for a specific date."),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Date to check, YYYY-MM-DD or a phrase such as \"tomorrow\""),
	),
	mcp.WithNumber("duration",
		mcp.Description("Appointment duration in minutes (default: the configured duration)"),
	),
)

// bookAppointmentDirectTool defines the book_appointment_direct MCP tool.
var bookAppointmentDirectTool = mcp.NewTool("book_appointment_direct",
	mcp.WithDescription("Directly book an appointment with confirmed details, bypassing the conversation."),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Appointment date (YYYY-MM-DD)"),
	),
	mcp.WithString("time_slot",
		mcp.Required(),
		mcp.Description("Time slot in HH:MM-HH:MM format"),
	),
	mcp.WithObject("customer_info",
		mcp.Required(),
		mcp.Description("Customer details such as name, phone, email, date_of_birth, reason_for_visit, preferred_service, notes"),
	),
	mcp.WithString("summary",
		mcp.Description("Custom appointment summary (optional)"),
	),
)

// getAgentStatusTool defines the get_agent_status MCP tool.
var getAgentStatusTool = mcp.NewTool("get_agent_status",
	mcp.WithDescription("Get current agent configuration and status."),
)

// getConversationStatusTool defines the get_conversation_status MCP tool.
var getConversationStatusTool = mcp.NewTool("get_conversation_status",
	mcp.WithDescription("Get the status of a specific conversation session."),
	mcp.WithString("session_id",
		mcp.Description("Session ID to check (default \"default\")"),
	),
)

// resetConversationTool defines the reset_conversation MCP tool.
var resetConversationTool = mcp.NewTool("reset_conversation",
	mcp.WithDescription("Reset a conversation session, clearing its context."),
	mcp.WithString("session_id",
		mcp.Description("Session ID to reset (default \"default\")"),
	),
)

// cancelAppointmentTool defines the cancel_appointment MCP tool.
var cancelAppointmentTool = mcp.NewTool("cancel_appointment",
	mcp.WithDescription("Cancel an existing appointment by event ID."),
	mcp.WithString("event_id",
		mcp.Required(),
		mcp.Description("Calendar event ID of the appointment to cancel"),
	),
)

// getAppointmentTool defines the get_appointment MCP tool.
var getAppointmentTool = mcp.NewTool("get_appointment",
	mcp.WithDescription("Get the details of an appointment by event ID."),
	mcp.WithString("event_id",
		mcp.Required(),
		mcp.Description("Calendar event ID of the appointment"),
	),
)

// getBusinessInfoTool defines the get_business_info MCP tool.
var getBusinessInfoTool = mcp.NewTool("get_business_info",
	mcp.WithDescription("Get information about the currently configured business."),
)

// getCustomerHistoryTool defines the get_customer_history MCP tool.
var getCustomerHistoryTool = mcp.NewTool("get_customer_history",
	mcp.WithDescription("Look up stored customer records by phone number or name."),
	mcp.WithString("phone",
		mcp.Description("Customer phone number"),
	),
	mcp.WithString("name",
		mcp.Description("Customer name (case-insensitive)"),
	),
)
