package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/apptagent/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials for the Google backends",
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize Google Calendar and Sheets access in the browser",
	Long: `Runs the OAuth consent flow with an OAuth desktop client and stores the
resulting token in <data_dir>/credentials.json. The Google backends use it when
google.credentials_file is not set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		clientSecret, _ := cmd.Flags().GetString("client-secret")
		if clientID == "" {
			clientID = os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
		}
		if clientSecret == "" {
			clientSecret = os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
		}
		if clientID == "" || clientSecret == "" {
			return fmt.Errorf("pass --client-id and --client-secret (or set GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := auth.CredentialPath(cfg.DataDir)

		google, err := auth.RunGoogleOAuth(cmd.Context(), clientID, clientSecret)
		if err != nil {
			return err
		}

		creds, err := auth.Load(path)
		if err != nil {
			return err
		}
		creds.Google = google
		if err := auth.Save(path, creds); err != nil {
			return err
		}
		fmt.Printf("Google credentials saved to %s\n", path)
		return nil
	},
}

func init() {
	authGoogleCmd.Flags().String("client-id", "", "OAuth client id")
	authGoogleCmd.Flags().String("client-secret", "", "OAuth client secret")
	authCmd.AddCommand(authGoogleCmd)
	rootCmd.AddCommand(authCmd)
}
