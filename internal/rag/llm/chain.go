package llm

import (
	"context"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// Chain tries providers in order and never surfaces an error: when every
// provider fails or is unavailable the fixed UnavailableMessage comes back.
type Chain struct {
	providers []Provider
	logger    *logger_i.Logger
}

// NewChain keeps the given order; nil providers (failed construction) are
// dropped here so callers can pass constructor results straight through.
func NewChain(providers ...Provider) *Chain {
	chain := &Chain{logger: logger_i.NewLogger("llm_chain")}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

func (c *Chain) Answer(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) string {
	for _, provider := range c.providers {
		if !provider.Available(ctx) {
			c.logger.Debug("provider unavailable, trying next", "provider", provider.Name())
			continue
		}

		answer, err := provider.Generate(ctx, question, contextChunks)
		if err != nil {
			c.logger.Warn("provider failed, falling back", "provider", provider.Name(), "error", err)
			continue
		}
		c.logger.Debug("answer generated", "provider", provider.Name())
		return answer
	}

	c.logger.Warn("no generation provider available")
	return UnavailableMessage
}
