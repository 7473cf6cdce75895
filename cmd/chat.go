package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the booking assistant in the terminal",
	Long:  `Starts an interactive conversation with the configured assistant. Type "exit" or press Ctrl+D to leave.`,
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
		profile := ag.Profile()

		sessionID := chatSession
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		fmt.Printf("%s: %s\n\n", profile.AssistantName, profile.Greeting())

		prompt := promptui.Prompt{Label: "You"}
		for {
			line, err := prompt.Run()
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}

			res := ag.Chat(cmd.Context(), line, sessionID)
			fmt.Printf("%s: %s\n", profile.AssistantName, res.Reply)
			if verbose {
				fmt.Printf("  [stage=%s intent=%s missing=%v]\n", res.Stage, res.Intent, res.MissingFields)
			}
			if res.AppointmentBooked && res.EventID != "" {
				fmt.Printf("  (booked, event %s)\n", res.EventID)
			}
			fmt.Println()
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume a session id (default: new session)")
	rootCmd.AddCommand(chatCmd)
}
