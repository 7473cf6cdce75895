package llm

import (
	"fmt"
	"os"
)

const defaultMaxTokens = 1000

// DefaultModels holds the model used when none is configured.
var DefaultModels = map[string]string{
	"openai":     "gpt-4o-mini",
	"anthropic":  "claude-3-5-haiku-latest",
	"google":     "gemini-2.0-flash",
	"ollama":     "llama3.1",
	"mistral":    "mistral-small-latest",
	"openrouter": "openai/gpt-4o-mini",
	"minimax":    "MiniMax-Text-01",
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// API keys are read from the environment. Supported provider types:
// "openai", "anthropic", "google", "ollama", "mistral", "openrouter", "minimax".
func NewProvider(providerType string, model string) (Provider, error) {
	if model == "" {
		model = DefaultModels[providerType]
	}
	switch providerType {
	case "anthropic":
		apiKey, err := requireEnv("ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "openai":
		apiKey, err := requireEnv("OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "mistral", "openrouter", "minimax":
		envKey := map[string]string{"mistral": "MISTRAL_API_KEY", "openrouter": "OPENROUTER_API_KEY", "minimax": "MINIMAX_API_KEY"}[providerType]
		baseURL := map[string]string{"mistral": MistralBaseURL, "openrouter": OpenRouterBaseURL, "minimax": MinimaxBaseURL}[providerType]
		apiKey, err := requireEnv(envKey)
		if err != nil {
			return nil, err
		}
		return NewOpenAICompatibleProvider(providerType, apiKey, baseURL, model), nil

	case "google":
		apiKey, err := requireEnv("GOOGLE_API_KEY")
		if err != nil {
			return nil, err
		}
		return NewGoogleProvider(apiKey, model), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is not set", key)
	}
	return v, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
