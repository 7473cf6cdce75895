package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider turns a list of messages into a completion.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// ErrEmptyCompletion is returned by Generate when the provider answered
// with no text.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Options tune a single Generate call. Zero values defer to the provider.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Generate sends one system prompt and one user prompt and returns the
// trimmed reply text.
func Generate(ctx context.Context, p Provider, systemPrompt, userPrompt string, opts Options) (string, error) {
	resp, err := p.Complete(ctx, CompletionRequest{
		Model: opts.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userPrompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", p.Name(), err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("%s completion: %w", p.Name(), ErrEmptyCompletion)
	}
	return text, nil
}
