package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/models"
)

const openAIBaseURL = "https://api.openai.com/v1"

type openAIProvider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatCompletionMsg `json:"messages"`
	MaxTokens      int32               `json:"max_tokens,omitempty"`
	Temperature    float32             `json:"temperature,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIProvider fails at construction when no API key is configured; the
// vendor is then simply absent from the configured set.
func NewOpenAIProvider(cfg config.ProviderConfig) (LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is not configured")
	}

	return &openAIProvider{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     openAIBaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Name implements LLMProvider.
func (p *openAIProvider) Name() string {
	return ProviderOpenAI
}

// Model implements LLMProvider.
func (p *openAIProvider) Model() string {
	return p.model
}

// Generate implements LLMProvider.
func (p *openAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, depth models.AnalysisDepth) (*ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reqBody := chatCompletionRequest{
		Model: p.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:      maxTokensForDepth(p.maxTokens, depth),
		Temperature:    p.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("read response: %w", err))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("decode response envelope: %w", err))
	}

	if chatResp.Error != nil {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("api error: %s", chatResp.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("api returned status %d: %s", resp.StatusCode, string(body)))
	}
	if len(chatResp.Choices) == 0 {
		return nil, newProviderCallError(ProviderOpenAI, fmt.Errorf("no choices in response"))
	}

	model := chatResp.Model
	if model == "" {
		model = p.model
	}

	return &ProviderResponse{
		Content:    chatResp.Choices[0].Message.Content,
		Model:      model,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, nil
}
