package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/models"
)

const geminiEmbedModel = "text-embedding-004"

// GeminiProvider wraps the Google GenAI client. Besides the LLMProvider
// capability it also produces embeddings for the reference-context retriever.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	embedModel  string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// NewGeminiProvider fails at construction when no API key is configured.
func NewGeminiProvider(cfg config.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is not configured")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		embedModel:  geminiEmbedModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Name implements LLMProvider.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Model implements LLMProvider.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate implements LLMProvider.
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, depth models.AnalysisDepth) (*ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	temperature := p.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokensForDepth(p.maxTokens, depth),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return nil, newProviderCallError(ProviderGemini, fmt.Errorf("api call failed: %w", err))
	}
	if resp == nil {
		return nil, newProviderCallError(ProviderGemini, fmt.Errorf("nil response"))
	}

	text := resp.Text()
	if text == "" {
		return nil, newProviderCallError(ProviderGemini, fmt.Errorf("no text content in response"))
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &ProviderResponse{
		Content:    text,
		Model:      p.model,
		TokensUsed: tokensUsed,
	}, nil
}

// GenerateEmbedding produces the query embedding used by the reference
// retriever.
func (p *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Keep well under the embedding model's input limit
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := p.client.Models.EmbedContent(ctx, p.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
