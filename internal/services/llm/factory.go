package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
)

// NewLLMService creates the LLM service implementation selected by
// configuration. A missing API key is not an error: the service comes back
// nil and every AI consumer degrades to its non-AI path, so a fresh install
// without credentials still works end to end.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch cfg.LLM.Provider {
	case common.LLMProviderClaude:
		if cfg.Claude.APIKey == "" {
			logger.Warn().Msg("No Claude API key configured, AI features disabled")
			return nil, nil
		}
		service, err := NewClaudeService(&cfg.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return service, nil

	case common.LLMProviderGemini:
		if cfg.Gemini.APIKey == "" {
			logger.Warn().Msg("No Gemini API key configured, AI features disabled")
			return nil, nil
		}
		service, err := NewGeminiService(&cfg.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini service: %w", err)
		}
		return service, nil

	case common.LLMProviderGroq:
		if cfg.Groq.APIKey == "" {
			logger.Warn().Msg("No Groq API key configured, AI features disabled")
			return nil, nil
		}
		service, err := NewGroqService(&cfg.Groq, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Groq service: %w", err)
		}
		return service, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider '%s': must be 'claude', 'gemini', or 'groq'", cfg.LLM.Provider)
	}
}
