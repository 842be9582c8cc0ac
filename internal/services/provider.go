package services

import (
	"context"

	"alfredoptarigan/cv-analyzer/internal/models"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	// ProviderAuto lets the selector pick from the configured set.
	ProviderAuto = "auto"
)

// providerPriority is the fixed fallback order consulted when no explicit
// provider wins. The set of vendors is closed so the selector can enumerate
// it for health reporting.
var providerPriority = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini}

// ProviderResponse is the vendor-neutral result of one model call.
type ProviderResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// LLMProvider is the single capability every vendor integration exposes.
// Implementations bound each call with their configured timeout, perform no
// retries, and surface transport or vendor-side failures as
// provider_call_failed errors. Content that is not valid analysis JSON is NOT
// an error here; that is the validator's concern.
type LLMProvider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, systemPrompt, userPrompt string, depth models.AnalysisDepth) (*ProviderResponse, error)
}

// maxTokensForDepth trims the output budget for quick analyses.
func maxTokensForDepth(maxTokens int32, depth models.AnalysisDepth) int32 {
	if depth == models.DepthQuick {
		return maxTokens / 2
	}
	return maxTokens
}
