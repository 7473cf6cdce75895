// Package mcp exposes the appointment agent as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/agent"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server whose tools drive an agent.Host.
type Server struct {
	host *agent.Host
	log  *zap.Logger
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server over host.
func NewServer(host *agent.Host, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		host: host,
		log:  log,
	}

	s.mcp = server.NewMCPServer(
		"apptagent",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(configureBusinessTool, s.handleConfigureBusiness)
	s.mcp.AddTool(chatWithAgentTool, s.handleChatWithAgent)
	s.mcp.AddTool(checkAvailabilityTool, s.handleCheckAvailability)
	s.mcp.AddTool(bookAppointmentDirectTool, s.handleBookAppointmentDirect)
	s.mcp.AddTool(getAgentStatusTool, s.handleGetAgentStatus)
	s.mcp.AddTool(getConversationStatusTool, s.handleGetConversationStatus)
	s.mcp.AddTool(resetConversationTool, s.handleResetConversation)
	s.mcp.AddTool(cancelAppointmentTool, s.handleCancelAppointment)
	s.mcp.AddTool(getAppointmentTool, s.handleGetAppointment)
	s.mcp.AddTool(getBusinessInfoTool, s.handleGetBusinessInfo)
	s.mcp.AddTool(getCustomerHistoryTool, s.handleGetCustomerHistory)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	s.log.Info("serving MCP on stdio", zap.String("version", Version))
	return server.ServeStdio(s.mcp)
}
