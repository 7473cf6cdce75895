package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/apptagent/internal/records"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a customer's stored appointment records",
	RunE: func(cmd *cobra.Command, args []string) error {
		phone, _ := cmd.Flags().GetString("phone")
		name, _ := cmd.Flags().GetString("name")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if phone == "" && name == "" {
			return fmt.Errorf("pass --phone or --name")
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

		res := ag.CustomerHistory(cmd.Context(), phone, name)
		if jsonOutput {
			return printJSON(res)
		}
		if !res.Success {
			return fmt.Errorf("%s", res.Error)
		}
		if len(res.Records) == 0 {
			fmt.Println("No records found.")
			return nil
		}
		headers := records.Headers(ag.Profile().BusinessType)
		for _, e := range res.Records {
			var cells []string
			for _, h := range headers {
				if v := e[h]; v != "" {
					cells = append(cells, fmt.Sprintf("%s=%s", h, v))
				}
			}
			fmt.Println(strings.Join(cells, "  "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("phone", "", "customer phone")
	historyCmd.Flags().String("name", "", "customer name")
	historyCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(historyCmd)
}
