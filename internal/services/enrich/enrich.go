// Package enrich layers language-model synthesis over the deterministic
// pipeline output. Every LLM-backed operation has a deterministic fallback
// and no call is ever retried.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/llm"
)

// Completer is the slice of the Claude client the enrichment service needs.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, result interface{}) (*llm.Usage, error)
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, *llm.Usage, error)
}

// Service runs enrichment calls. A nil client is valid and routes every
// operation straight to its fallback.
type Service struct {
	client Completer
	logger *zap.Logger
}

// New creates an enrichment service.
func New(client Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}
