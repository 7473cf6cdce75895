package agent

import (
	"context"

	"github.com/ziadkadry99/apptagent/internal/llm"
	"github.com/ziadkadry99/apptagent/internal/metrics"
)

// meteredProvider counts the tokens every completion uses.
type meteredProvider struct {
	llm.Provider
	metrics *metrics.Recorder
}

func (m *meteredProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := m.Provider.Complete(ctx, req)
	if err == nil && resp != nil {
		m.metrics.Tokens(m.Provider.Name(), resp.InputTokens, resp.OutputTokens)
	}
	return resp, err
}
