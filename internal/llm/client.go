package llm

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// DegradedResponse is returned when every model call fails. The reply
// reads as a service notice rather than an error.
const DegradedResponse = `🤖 Assistant IA en mode dégradé

Désolé, le service IA principal est temporairement indisponible.

Pour résoudre :
1. Vérifiez votre compte Groq : https://console.groq.com

En attendant, voici une réponse générale sur l'IA :

L'intelligence artificielle est un domaine de l'informatique qui crée des systèmes capables d'apprendre, de raisonner et de résoudre des problèmes comme un humain.`

// ChatAPI defines the interface for chat completion generation.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client generates chat completions against a Groq-compatible endpoint.
// Calls are rate limited so a burst of conversations cannot exhaust the
// upstream quota.
type Client struct {
	api     ChatAPI
	limiter *rate.Limiter
}

type Config struct {
	APIKey  string
	BaseURL string
	// RequestsPerSecond caps outbound completion calls. Zero disables
	// limiting.
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a chat client for a Groq-style OpenAI-compatible API.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientCfg),
		limiter: limiter,
	}
}

// Generate produces a completion for the conversation. The model is selected
// from the latest user message.
func (c *Client) Generate(ctx context.Context, messages []domain.Message) (string, error) {
	if len(messages) == 0 {
		return "", domain.ErrEmptyMessage
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	model := SelectModel(lastUserContent(messages))

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toChatMessages(messages),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrModelUnavailable
	}

	return resp.Choices[0].Message.Content, nil
}

// Respond generates a completion and degrades to a static notice instead of
// failing. The orchestrator uses this so a model outage never surfaces as an
// error to the end user.
func (c *Client) Respond(ctx context.Context, messages []domain.Message) string {
	content, err := c.Generate(ctx, messages)
	if err != nil {
		log.Printf("llm: falling back to degraded response: %v", err)
		return DegradedResponse
	}
	return content
}

func lastUserContent(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return messages[len(messages)-1].Content
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
