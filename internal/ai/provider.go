package ai

import "context"

// Provider is a pluggable narrative backend. It only ever produces qualitative
// text; it is never authoritative for scores or ranking.
type Provider interface {
	// GenerateEvaluation sends the combined evaluation prompt and returns the
	// raw response text. Implementations must honor ctx cancellation.
	GenerateEvaluation(ctx context.Context, prompt string) (string, error)
	Name() string
	ModelName() string
}
