package llm

import (
	"context"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

// UnavailableMessage is returned to the user when every provider in the
// chain is down or unconfigured.
const UnavailableMessage = "Sorry, AI chat is not available. Please configure your OPENAI_API_KEY or set up local AI."

// Provider generates an answer from a question plus retrieved context.
type Provider interface {
	Name() string

	// Available is a lightweight probe; the chain skips providers that
	// report false without calling Generate.
	Available(ctx context.Context) bool

	Generate(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) (string, error)
}
