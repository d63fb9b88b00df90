// Package assistant отвечает на вопросы и генерирует комментарии к снапшоту через LLM
// с детерминированным локальным запасным путем
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"fleet-curation-service/internal/models"
)

// ErrProviderUnavailable провайдер не настроен (нет ключа)
var ErrProviderUnavailable = errors.New("assistant provider is not configured")

// DefaultModel модель по умолчанию
const DefaultModel = "gpt-4o-mini"

// Mode как был получен ответ
type Mode string

const (
	ModeProvider Mode = "provider"
	ModeFallback Mode = "fallback"
	ModeError    Mode = "error"
)

// Provider внешний LLM
type Provider interface {
	Complete(ctx context.Context, system string, messages []models.ChatMessage) (string, error)
}

// OpenAIProvider провайдер на go-openai
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider создает провайдер. Пустой ключ дает ErrProviderUnavailable.
func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrProviderUnavailable
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Model возвращает имя модели
func (o *OpenAIProvider) Model() string {
	return o.model
}

// Complete реализует Provider
func (o *OpenAIProvider) Complete(ctx context.Context, system string, messages []models.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)+1),
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
