package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
)

// GroqService implements the LLMService interface against Groq's
// OpenAI-compatible chat completion endpoint.
type GroqService struct {
	config  *common.GroqConfig
	logger  arbor.ILogger
	client  *openai.Client
	timeout time.Duration
}

// convertMessagesToOpenAI converts []interfaces.Message to the OpenAI chat
// format. Roles map directly; unknown roles default to user.
func convertMessagesToOpenAI(messages []interfaces.Message) ([]openai.ChatCompletionMessage, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case "system", "user", "assistant":
		default:
			role = openai.ChatMessageRoleUser
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	return chatMessages, nil
}

// NewGroqService creates a new Groq LLM service instance
func NewGroqService(groqConfig *common.GroqConfig, logger arbor.ILogger) (*GroqService, error) {
	if groqConfig.APIKey == "" {
		return nil, fmt.Errorf("Groq API key is required for Groq service (set via GROQ_API_KEY, VIGILO_GROQ_API_KEY, or groq.api_key in config)")
	}

	if groqConfig.Model == "" {
		groqConfig.Model = "llama3-70b-8192"
	}
	if groqConfig.BaseURL == "" {
		groqConfig.BaseURL = "https://api.groq.com/openai/v1"
	}

	timeout, err := time.ParseDuration(groqConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", groqConfig.Timeout, err)
	}

	clientConfig := openai.DefaultConfig(groqConfig.APIKey)
	clientConfig.BaseURL = groqConfig.BaseURL

	service := &GroqService{
		config:  groqConfig,
		logger:  logger,
		client:  openai.NewClientWithConfig(clientConfig),
		timeout: timeout,
	}

	logger.Debug().
		Str("model", groqConfig.Model).
		Str("base_url", groqConfig.BaseURL).
		Dur("timeout", timeout).
		Float32("temperature", groqConfig.Temperature).
		Msg("Groq LLM service initialized successfully")

	return service, nil
}

// Chat generates a completion response based on the conversation history
func (s *GroqService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	response, err := s.generateCompletion(timeoutCtx, messages)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Groq chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Groq chat completion completed successfully")

	return response, nil
}

func (s *GroqService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	chatMessages, err := convertMessagesToOpenAI(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to OpenAI format: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    chatMessages,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("Groq API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response generated from Groq API")
	}

	response := resp.Choices[0].Message.Content
	if strings.TrimSpace(response) == "" {
		return "", fmt.Errorf("Groq API returned empty response")
	}

	return response, nil
}

// HealthCheck verifies the Groq service is operational with a lightweight
// connectivity probe.
func (s *GroqService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("Groq client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	response, err := s.generateCompletion(healthCheckCtx, []interfaces.Message{
		{Role: "user", Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("Groq health check failed: %w", err)
	}

	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Groq probe returned empty response")
	}

	return nil
}

// Close releases resources held by the service
func (s *GroqService) Close() error {
	s.client = nil
	return nil
}
