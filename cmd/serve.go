package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/apptagent/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing the booking
assistant as tools (configure_business, chat_with_agent, check_availability, ...).
Logs go to stderr; stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version
		srv := mcpserver.NewServer(a.host, a.log)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
