package domain

import "context"

// GenerationOptions carries the fixed sampling parameters for one completion.
type GenerationOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMClient defines the capability to send a system/user prompt pair to a
// text-completion service and receive the generated answer.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, error)
	Version() string
}
