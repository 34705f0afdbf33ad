package llm

import "context"

// LLMClient is the interface for LLM clients
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error)
}

// Ensure implementations satisfy the interface
var _ LLMClient = (*OpenAIClient)(nil)
