package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/conversation"
)

// ErrNotConfigured is returned before the first successful Configure.
var ErrNotConfigured = errors.New("agent not configured: configure a business first")

// IntegrationFactory builds the collaborators for a profile.
type IntegrationFactory interface {
	Build(ctx context.Context, profile business.Profile) (Integrations, error)
}

// IntegrationFactoryFunc adapts a function to IntegrationFactory.
type IntegrationFactoryFunc func(ctx context.Context, profile business.Profile) (Integrations, error)

func (f IntegrationFactoryFunc) Build(ctx context.Context, profile business.Profile) (Integrations, error) {
	return f(ctx, profile)
}

// Host owns the session store and the active Agent. Reconfiguring swaps
// the Agent atomically; sessions survive and keep the business type and
// required fields they were created with.
type Host struct {
	mu       sync.RWMutex
	agent    *Agent
	sessions *conversation.Store
	factory  IntegrationFactory
	opts     Options
}

// NewHost creates an unconfigured Host.
func NewHost(factory IntegrationFactory, opts Options) *Host {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Host{
		sessions: conversation.NewStore(opts.Now),
		factory:  factory,
		opts:     opts,
	}
}

// Configure validates profile, builds its integrations and makes the
// resulting Agent active. On error the previous Agent, if any, stays.
func (h *Host) Configure(ctx context.Context, profile business.Profile) (*Agent, error) {
	profile.ApplyDefaults()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	integ, err := h.factory.Build(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("building integrations: %w", err)
	}
	a, err := New(profile, h.sessions, integ, h.opts)
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	h.mu.Lock()
	h.agent = a
	h.mu.Unlock()

	h.opts.Logger.Info("agent configured",
		zap.String("business", profile.BusinessName),
		zap.String("business_type", string(profile.BusinessType)),
		zap.Bool("records", integ.Records != nil),
		zap.Bool("llm", integ.LLM != nil))
	return a, nil
}

// Agent returns the active Agent.
func (h *Host) Agent() (*Agent, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.agent == nil {
		return nil, ErrNotConfigured
	}
	return h.agent, nil
}

// Status reports the active Agent, or an unconfigured status.
func (h *Host) Status() AgentStatus {
	a, err := h.Agent()
	if err != nil {
		return AgentStatus{Configured: false, Message: "Agent not configured", ActiveConversations: h.sessions.Len()}
	}
	return a.Status()
}

// Sessions exposes the shared session store.
func (h *Host) Sessions() *conversation.Store {
	return h.sessions
}
