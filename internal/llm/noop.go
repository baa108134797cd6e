package llm

import (
	"context"
	"fmt"
)

// NoOpProvider always fails; selected when LLM is disabled or misconfigured.
type NoOpProvider struct {
	reason string
}

// NewNoOpProvider builds a NoOpProvider that reports reason on every call.
func NewNoOpProvider(reason string) *NoOpProvider {
	return &NoOpProvider{reason: reason}
}

func (p *NoOpProvider) Summarize(ctx context.Context, sc *SessionContext) (SummarizationResult, error) {
	return SummarizationResult{}, fmt.Errorf("llm unavailable: %s", p.reason)
}

func (p *NoOpProvider) Name() string { return "noop" }

func (p *NoOpProvider) IsAvailable() bool { return false }
