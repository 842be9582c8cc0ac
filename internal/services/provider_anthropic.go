package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/models"
)

type anthropicProvider struct {
	client      anthropic.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// NewAnthropicProvider fails at construction when no API key is configured.
func NewAnthropicProvider(cfg config.ProviderConfig) (LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is not configured")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	return &anthropicProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Name implements LLMProvider.
func (p *anthropicProvider) Name() string {
	return ProviderAnthropic
}

// Model implements LLMProvider.
func (p *anthropicProvider) Model() string {
	return p.model
}

// Generate implements LLMProvider.
func (p *anthropicProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, depth models.AnalysisDepth) (*ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokensForDepth(p.maxTokens, depth)),
		Temperature: anthropic.Float(float64(p.temperature)),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, newProviderCallError(ProviderAnthropic, fmt.Errorf("api call failed: %w", err))
	}

	if len(message.Content) == 0 {
		return nil, newProviderCallError(ProviderAnthropic, fmt.Errorf("empty response content"))
	}

	var content strings.Builder
	for _, block := range message.Content {
		text := block.AsText()
		content.WriteString(text.Text)
	}

	tokensUsed := int(message.Usage.InputTokens + message.Usage.OutputTokens)

	return &ProviderResponse{
		Content:    content.String(),
		Model:      string(message.Model),
		TokensUsed: tokensUsed,
	}, nil
}
