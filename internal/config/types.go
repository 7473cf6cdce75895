package config

import "github.com/ziadkadry99/apptagent/internal/business"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	ProviderMistral    ProviderType = "mistral"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderMiniMax    ProviderType = "minimax"
)

// Backend names a collaborator implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendGoogle Backend = "google"
	BackendNone   Backend = "none"
)

// Config is the top-level apptagent configuration, corresponding to apptagent.yml.
type Config struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model,omitempty" koanf:"model"`
	Temperature  float64      `yaml:"temperature" koanf:"temperature"`
	MaxTokens    int          `yaml:"max_tokens" koanf:"max_tokens"`
	RateLimitRPM int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	LogLevel     string       `yaml:"log_level" koanf:"log_level"`
	Development  bool         `yaml:"development" koanf:"development"`
	DataDir      string       `yaml:"data_dir" koanf:"data_dir"`
	Port         int          `yaml:"port" koanf:"port"`
	Google       GoogleConfig `yaml:"google" koanf:"google"`
	Calendar     BackendConfig `yaml:"calendar" koanf:"calendar"`
	Records      BackendConfig `yaml:"records" koanf:"records"`

	// Business is optional; without it the agent starts unconfigured.
	Business *business.Profile `yaml:"business,omitempty" koanf:"business"`
}

// GoogleConfig points the Google backends at a service-account file. When
// empty they use the token stored by `apptagent auth google`.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file,omitempty" koanf:"credentials_file"`
}

// BackendConfig selects a collaborator implementation.
type BackendConfig struct {
	Backend Backend `yaml:"backend" koanf:"backend"`
}
