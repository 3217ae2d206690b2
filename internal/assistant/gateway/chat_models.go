package gateway

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/vira-assistant/server/internal/assistant/model"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// NewClient creates the Gemini API client shared by the chat model and the
// embedder.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModel creates the Gemini chat model used for both free-form replies
// and employee disambiguation.
func NewChatModel(ctx context.Context, client *genai.Client, cfg model.GatewayConfig) (*gemini.ChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", cfg.Model).Msg("Error creating chat model")
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}
	return chatModel, nil
}
