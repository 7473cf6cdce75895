package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability <date>",
	Short: "List the free slots of a day",
	Long:  `Lists the free appointment slots of a day. The date may be YYYY-MM-DD or natural language such as "tomorrow" or "next friday".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetInt("duration")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := a.agent()
		if err != nil {
			return err
		}

		res := ag.CheckAvailability(cmd.Context(), args[0], duration)
		if jsonOutput {
			return printJSON(res)
		}
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		if res.Closed || len(res.AvailableSlots) == 0 {
			fmt.Printf("No available slots on %s.\n", res.Date)
			return nil
		}
		fmt.Printf("Available on %s (hours %s):\n", res.Date, res.WorkingHours)
		for _, s := range res.AvailableSlots {
			fmt.Printf("  %s\n", s)
		}
		return nil
	},
}

func init() {
	availabilityCmd.Flags().Int("duration", 0, "appointment length in minutes (default: the business setting)")
	availabilityCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(availabilityCmd)
}
