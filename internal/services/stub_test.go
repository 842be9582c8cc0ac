package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// stubProvider scripts one vendor's behavior per call.
type stubProvider struct {
	name     string
	model    string
	mu       sync.Mutex
	calls    int
	generate func(call int) (*ProviderResponse, error)
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return p.model }

func (p *stubProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, depth models.AnalysisDepth) (*ProviderResponse, error) {
	p.mu.Lock()
	call := p.calls
	p.calls++
	p.mu.Unlock()
	return p.generate(call)
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func succeedingProvider(name, content string) *stubProvider {
	return &stubProvider{
		name:  name,
		model: name + "-model",
		generate: func(int) (*ProviderResponse, error) {
			return &ProviderResponse{Content: content, Model: name + "-model", TokensUsed: 1200}, nil
		},
	}
}

func failingProvider(name string) *stubProvider {
	return &stubProvider{
		name:  name,
		model: name + "-model",
		generate: func(int) (*ProviderResponse, error) {
			return nil, newProviderCallError(name, fmt.Errorf("upstream unavailable"))
		},
	}
}

type stubSelector struct {
	candidates []LLMProvider
	err        error
	health     map[string]string
}

func (s *stubSelector) Candidates(requested string) ([]LLMProvider, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func (s *stubSelector) Health() map[string]string { return s.health }

type stubExtractor struct {
	content *DocumentContent
	err     error
}

func (e *stubExtractor) Extract(data []byte, filename string) (*DocumentContent, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.content, nil
}

// memoryAuditRepo is an in-memory AuditRepository for orchestration tests.
type memoryAuditRepo struct {
	mu      sync.Mutex
	records []*models.AnalysisLog
	tokens  map[string]int
}

func newMemoryAuditRepo() *memoryAuditRepo {
	return &memoryAuditRepo{tokens: make(map[string]int)}
}

func (r *memoryAuditRepo) Create(record *models.AnalysisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryAuditRepo) AddTokenUsage(provider string, tokens int, day time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[provider] += tokens
	return nil
}

func (r *memoryAuditRepo) FindByAnalysisID(analysisID uuid.UUID) (*models.AnalysisLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.AnalysisID == analysisID {
			return record, nil
		}
	}
	return nil, fmt.Errorf("analysis log not found: %w", gorm.ErrRecordNotFound)
}

func (r *memoryAuditRepo) Recent(limit int) ([]models.AnalysisLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AnalysisLog
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.records[i])
	}
	return out, nil
}

func (r *memoryAuditRepo) UsageStats(days int) ([]models.ProviderUsageStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats []models.ProviderUsageStats
	for provider, total := range r.tokens {
		stats = append(stats, models.ProviderUsageStats{Provider: provider, TotalTokens: int64(total)})
	}
	return stats, nil
}

func (r *memoryAuditRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func (r *memoryAuditRepo) all() []*models.AnalysisLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.AnalysisLog(nil), r.records...)
}
