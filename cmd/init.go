package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/apptagent/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an apptagent configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that picks the LLM provider, a business preset and the calendar and records backends, then writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
