package services

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"alfredoptarigan/cv-analyzer/internal/config"
)

const (
	ProviderStatusAvailable     = "available"
	ProviderStatusNotConfigured = "not_configured"
)

// ProviderSelector resolves which providers to try, in what order. It never
// issues provider calls itself; it only produces the ordered candidate list
// the orchestrator walks during fallback.
type ProviderSelector interface {
	// Candidates returns the selected provider first, followed by every other
	// configured provider in the fixed priority order.
	Candidates(requested string) ([]LLMProvider, error)

	// Health maps each known vendor to its configuration status.
	Health() map[string]string
}

type providerSelector struct {
	configured      map[string]LLMProvider
	defaultProvider string
}

// NewProviderSelector constructs every vendor whose credential resolves.
// Absence of a credential is logged and skipped, never fatal.
func NewProviderSelector(cfg config.ProvidersConfig) ProviderSelector {
	configured := make(map[string]LLMProvider)

	if provider, err := NewOpenAIProvider(cfg.OpenAI); err != nil {
		log.Printf("⚠️  OpenAI provider not configured: %v", err)
	} else {
		configured[ProviderOpenAI] = provider
		log.Println("✅ OpenAI provider initialized")
	}

	if provider, err := NewAnthropicProvider(cfg.Anthropic); err != nil {
		log.Printf("⚠️  Anthropic provider not configured: %v", err)
	} else {
		configured[ProviderAnthropic] = provider
		log.Println("✅ Anthropic provider initialized")
	}

	if provider, err := NewGeminiProvider(cfg.Gemini); err != nil {
		log.Printf("⚠️  Gemini provider not configured: %v", err)
	} else {
		configured[ProviderGemini] = provider
		log.Println("✅ Gemini provider initialized")
	}

	if len(configured) == 0 {
		log.Println("⚠️  No LLM providers configured! Check your API key configuration.")
	}

	return newProviderSelector(configured, cfg.DefaultProvider)
}

func newProviderSelector(configured map[string]LLMProvider, defaultProvider string) ProviderSelector {
	return &providerSelector{
		configured:      configured,
		defaultProvider: strings.ToLower(strings.TrimSpace(defaultProvider)),
	}
}

// Candidates implements ProviderSelector.
func (s *providerSelector) Candidates(requested string) ([]LLMProvider, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))

	if requested != "" && requested != ProviderAuto {
		selected, ok := s.configured[requested]
		if !ok {
			return nil, &AnalysisError{
				Kind:     ErrKindRequestedProviderUnavailable,
				Provider: requested,
				Err:      fmt.Errorf("requested provider %q is not configured", requested),
			}
		}
		return s.ordered(selected), nil
	}

	// "auto": the environment default wins when it is configured
	if s.defaultProvider != "" && s.defaultProvider != ProviderAuto {
		if selected, ok := s.configured[s.defaultProvider]; ok {
			return s.ordered(selected), nil
		}
	}

	// Fall through the fixed priority order
	for _, name := range providerPriority {
		if selected, ok := s.configured[name]; ok {
			return s.ordered(selected), nil
		}
	}

	return nil, &AnalysisError{
		Kind: ErrKindNoProviderConfigured,
		Err:  fmt.Errorf("no LLM provider has valid credentials"),
	}
}

// ordered places selected first and the remaining configured providers after
// it in priority order.
func (s *providerSelector) ordered(selected LLMProvider) []LLMProvider {
	candidates := []LLMProvider{selected}
	for _, name := range providerPriority {
		if name == selected.Name() {
			continue
		}
		if provider, ok := s.configured[name]; ok {
			candidates = append(candidates, provider)
		}
	}
	return candidates
}

// Health implements ProviderSelector.
func (s *providerSelector) Health() map[string]string {
	status := make(map[string]string, len(providerPriority))
	for _, name := range providerPriority {
		if _, ok := s.configured[name]; ok {
			status[name] = ProviderStatusAvailable
		} else {
			status[name] = ProviderStatusNotConfigured
		}
	}
	return status
}
