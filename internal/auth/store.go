// Package auth handles the Google credentials used by the calendar and
// spreadsheet backends: a service-account file, or an OAuth token obtained
// once through the browser and stored locally.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GoogleCredentials stores OAuth2 tokens for Google API access.
type GoogleCredentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenExpiry  string `json:"token_expiry,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// Credentials holds stored credentials.
type Credentials struct {
	Google *GoogleCredentials `json:"google,omitempty"`
}

// CredentialPath returns the credentials file inside dataDir.
func CredentialPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.json")
}

// Load reads credentials from path.
// Returns empty credentials if the file doesn't exist.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials to path with restricted permissions.
func Save(path string, creds *Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}
