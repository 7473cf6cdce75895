package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/apptagent/internal/agent"
)

var bookCmd = &cobra.Command{
	Use:   "book <date> <start-end>",
	Short: "Book an appointment directly",
	Long: `Books a slot without a conversation, for example:

  apptagent book 2024-03-15 10:00-11:00 --name "Jane Doe" --phone 5551234567`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		email, _ := cmd.Flags().GetString("email")
		fields, _ := cmd.Flags().GetStringToString("field")
		summary, _ := cmd.Flags().GetString("summary")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		customer := map[string]string{"name": name, "phone": phone, "email": email}
		for k, v := range fields {
			customer[k] = v
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := a.agent()
		if err != nil {
			return err
		}

		res := ag.BookDirect(cmd.Context(), agent.DirectBooking{
			Date:         args[0],
			Slot:         args[1],
			CustomerInfo: customer,
			Summary:      summary,
		})
		if jsonOutput {
			return printJSON(res)
		}
		if !res.Success {
			return fmt.Errorf("%s: %s", res.Message, res.Error)
		}
		fmt.Println(res.Message)
		fmt.Printf("  Event: %s\n", res.EventID)
		if res.EventLink != "" {
			fmt.Printf("  Link:  %s\n", res.EventLink)
		}
		return nil
	},
}

func init() {
	bookCmd.Flags().String("name", "", "customer name")
	bookCmd.Flags().String("phone", "", "customer phone")
	bookCmd.Flags().String("email", "", "customer email (invited when the calendar supports it)")
	bookCmd.Flags().StringToString("field", nil, "extra customer fields, e.g. --field reason_for_visit=checkup")
	bookCmd.Flags().String("summary", "", "event title (default: Appointment - <name>)")
	bookCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(bookCmd)
}
