package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/apptagent/internal/business"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("expected default max_tokens 1000, got %d", cfg.MaxTokens)
	}
	if cfg.Calendar.Backend != BackendLocal || cfg.Records.Backend != BackendLocal {
		t.Errorf("expected local backends, got %q/%q", cfg.Calendar.Backend, cfg.Records.Backend)
	}
	if cfg.Business != nil {
		t.Error("expected no business by default")
	}
	if got := cfg.DBPath(); got != filepath.Join(".apptagent", "apptagent.db") {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apptagent.yml")

	profile := business.Preset(business.TypeDentist, "Bright Smiles", "Emily")
	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-3-5-haiku-latest"
	original.Temperature = 0.5
	original.RateLimitRPM = 30
	original.Records.Backend = BackendNone
	original.Business = &profile

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Temperature != 0.5 || loaded.RateLimitRPM != 30 {
		t.Errorf("generation settings: got %v/%d", loaded.Temperature, loaded.RateLimitRPM)
	}
	if loaded.Records.Backend != BackendNone {
		t.Errorf("records.backend: got %q", loaded.Records.Backend)
	}
	if loaded.Business == nil {
		t.Fatal("business should survive the round trip")
	}
	b := loaded.Business
	if b.BusinessType != business.TypeDentist || b.BusinessName != "Bright Smiles" || b.AssistantName != "Emily" {
		t.Errorf("business identity: got %+v", b)
	}
	if len(b.Services) != len(profile.Services) {
		t.Errorf("services: got %d, want %d", len(b.Services), len(profile.Services))
	}
	if b.WorkingHours["friday"] != "08:00-16:00" {
		t.Errorf("friday hours: got %q", b.WorkingHours["friday"])
	}
	if h, ok := b.WorkingHours["saturday"]; !ok || h != "" {
		t.Errorf("saturday should be closed, got %q (present=%v)", h, ok)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apptagent.yml")

	cfg := DefaultConfig()
	profile := business.Preset(business.TypeSalon, "", "")
	cfg.Business = &profile
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("APPTAGENT_PROVIDER", "mistral")
	t.Setenv("APPTAGENT_TEMPERATURE", "0.7")
	t.Setenv("APPTAGENT_RATE_LIMIT_RPM", "12")
	t.Setenv("APPTAGENT_CALENDAR__BACKEND", "google")
	t.Setenv("APPTAGENT_BUSINESS__BUSINESS_NAME", "Cut Above")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderMistral {
		t.Errorf("provider: got %q, want %q", loaded.Provider, ProviderMistral)
	}
	if loaded.Temperature != 0.7 {
		t.Errorf("temperature: got %v", loaded.Temperature)
	}
	if loaded.RateLimitRPM != 12 {
		t.Errorf("rate_limit_rpm: got %d", loaded.RateLimitRPM)
	}
	if loaded.Calendar.Backend != BackendGoogle {
		t.Errorf("calendar.backend: got %q", loaded.Calendar.Backend)
	}
	if loaded.Business == nil || loaded.Business.BusinessName != "Cut Above" {
		t.Errorf("nested override failed: %+v", loaded.Business)
	}
	if loaded.Business.AssistantName != "Sarah" {
		t.Errorf("override should keep the other business fields, got %q", loaded.Business.AssistantName)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APPTAGENT_PROVIDER":                 "provider",
		"APPTAGENT_MAX_TOKENS":               "max_tokens",
		"APPTAGENT_GOOGLE__CREDENTIALS_FILE": "google.credentials_file",
		"APPTAGENT_BUSINESS__TIMEZONE":       "business.timezone",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }, "provider is required"},
		{"unknown provider", func(c *Config) { c.Provider = "invalid" }, "invalid provider"},
		{"temperature", func(c *Config) { c.Temperature = 3 }, "temperature"},
		{"max tokens", func(c *Config) { c.MaxTokens = 0 }, "max_tokens"},
		{"rate limit", func(c *Config) { c.RateLimitRPM = -1 }, "rate_limit_rpm"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"port", func(c *Config) { c.Port = 70000 }, "port"},
		{"calendar backend", func(c *Config) { c.Calendar.Backend = "outlook" }, "calendar.backend"},
		{"records backend", func(c *Config) { c.Records.Backend = "csv" }, "records.backend"},
		{"data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"business", func(c *Config) {
			p := business.Preset(business.TypeDentist, "", "")
			p.WorkingHours["monday"] = "17:00-09:00"
			c.Business = &p
		}, "business"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDoesNotMutateBusiness(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Business = &business.Profile{
		BusinessName:  "Corner Office",
		AssistantName: "Kim",
		Services:      []string{"Consultation"},
		WorkingHours:  map[string]string{"monday": "09:00-17:00"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Business.BusinessType != "" || len(cfg.Business.WorkingHours) != 1 {
		t.Errorf("Validate should check a copy, got %+v", cfg.Business)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderMistral, "MISTRAL_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderMiniMax, "MINIMAX_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestWizardValidators(t *testing.T) {
	if err := required("name")("  "); err == nil {
		t.Error("blank input should be rejected")
	}
	if err := required("name")("Ana"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validTimezone("Europe/Lisbon"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validTimezone("Mars/Olympus"); err == nil {
		t.Error("unknown timezone should be rejected")
	}
}
