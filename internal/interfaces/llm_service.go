package interfaces

import "context"

// Message represents a single turn in an LLM conversation
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// LLMService provides chat completions against a configured model provider.
// The service is an optionally-absent capability: consumers must tolerate a
// nil LLMService and degrade to their non-AI paths.
type LLMService interface {
	// Chat generates a completion for the conversation history
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the service can reach its provider
	HealthCheck(ctx context.Context) error

	// Close releases resources
	Close() error
}
