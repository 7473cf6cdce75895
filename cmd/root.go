package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/apptagent/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "apptagent",
	Short: "Conversational appointment booking assistant",
	Long: `apptagent is a chat assistant that books appointments for small
businesses. It collects customer details in natural language, checks the
calendar for free slots, books the chosen one and keeps a customer record.
It can be driven by AI agents over MCP, by an HTTP/WebSocket API, or from
the terminal.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
