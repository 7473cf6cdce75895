package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <event-id>",
	Short: "Cancel a booked appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := a.agent()
		if err != nil {
			return err
		}

		res := ag.CancelBooking(cmd.Context(), args[0])
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
