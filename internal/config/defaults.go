package config

import "path/filepath"

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = "apptagent.yml"

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: APPTAGENT_CALENDAR__BACKEND=google.
const EnvPrefix = "APPTAGENT_"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Temperature: 0.3,
		MaxTokens:   1000,
		LogLevel:    "info",
		DataDir:     ".apptagent",
		Port:        8080,
		Calendar:    BackendConfig{Backend: BackendLocal},
		Records:     BackendConfig{Backend: BackendLocal},
	}
}

// DBPath is the SQLite file holding the local calendar and records.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "apptagent.db")
}

// UsesGoogle reports whether any backend talks to Google APIs.
func (c *Config) UsesGoogle() bool {
	return c.Calendar.Backend == BackendGoogle || c.Records.Backend == BackendGoogle
}
