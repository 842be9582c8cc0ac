package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// AuditRepository is the append-only ledger of analysis attempts. Records are
// inserted exactly once per attempt and never updated; the token rollup is
// the single exception, upserted atomically per (date, provider).
type AuditRepository interface {
	Create(record *models.AnalysisLog) error
	AddTokenUsage(provider string, tokens int, day time.Time) error
	FindByAnalysisID(analysisID uuid.UUID) (*models.AnalysisLog, error)
	Recent(limit int) ([]models.AnalysisLog, error)
	UsageStats(days int) ([]models.ProviderUsageStats, error)
	Count() (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create implements AuditRepository.
func (r *auditRepository) Create(record *models.AnalysisLog) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create analysis log: %w", err)
	}
	return nil
}

// AddTokenUsage implements AuditRepository. Safe under concurrent writers:
// the insert-or-increment happens in one statement.
func (r *auditRepository) AddTokenUsage(provider string, tokens int, day time.Time) error {
	usage := models.TokenUsage{
		Date:         day.UTC().Truncate(24 * time.Hour),
		Provider:     provider,
		TotalTokens:  int64(tokens),
		RequestCount: 1,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "provider"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_tokens":  gorm.Expr("token_usage.total_tokens + ?", tokens),
			"request_count": gorm.Expr("token_usage.request_count + 1"),
		}),
	}).Create(&usage).Error

	if err != nil {
		return fmt.Errorf("failed to update token usage: %w", err)
	}
	return nil
}

// FindByAnalysisID implements AuditRepository.
func (r *auditRepository) FindByAnalysisID(analysisID uuid.UUID) (*models.AnalysisLog, error) {
	var record models.AnalysisLog
	if err := r.db.Where("analysis_id = ?", analysisID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis log not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find analysis log: %w", err)
	}
	return &record, nil
}

// Recent implements AuditRepository.
func (r *auditRepository) Recent(limit int) ([]models.AnalysisLog, error) {
	var records []models.AnalysisLog
	err := r.db.
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list analysis logs: %w", err)
	}
	return records, nil
}

// UsageStats implements AuditRepository.
func (r *auditRepository) UsageStats(days int) ([]models.ProviderUsageStats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	var stats []models.ProviderUsageStats
	err := r.db.Model(&models.TokenUsage{}).
		Select("provider, SUM(total_tokens) AS total_tokens, SUM(request_count) AS total_requests, AVG(total_tokens * 1.0 / request_count) AS avg_tokens_per_request").
		Where("date >= ?", since).
		Group("provider").
		Scan(&stats).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}
	return stats, nil
}

// Count implements AuditRepository.
func (r *auditRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.AnalysisLog{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count analysis logs: %w", err)
	}
	return count, nil
}
