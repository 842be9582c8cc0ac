package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	AnalysisStatusSuccess AnalysisStatus = "success"
	AnalysisStatusFailed  AnalysisStatus = "failed"
)

// AnalysisLog is the append-only audit record for one analysis attempt.
// One row per call, success or failure; never updated after insert.
type AnalysisLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AnalysisID       uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"analysis_id"`
	Timestamp        time.Time      `gorm:"index;not null" json:"timestamp"`
	CVFilename       string         `gorm:"type:text;not null" json:"cv_filename"`
	PositionTitle    string         `gorm:"type:text" json:"position_title"`
	CompanyName      string         `gorm:"type:text" json:"company_name"`
	Provider         string         `gorm:"type:text" json:"llm_provider"`
	Model            string         `gorm:"type:text" json:"llm_model"`
	PromptVersion    string         `gorm:"type:text" json:"prompt_version"`
	TokensUsed       *int           `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64          `gorm:"not null" json:"processing_time_ms"`
	OverallScore     *int           `json:"overall_score,omitempty"`
	Recommendation   *string        `gorm:"type:text" json:"recommendation,omitempty"`
	SectionBreakdown *string        `gorm:"type:jsonb" json:"section_breakdown,omitempty"`
	Status           AnalysisStatus `gorm:"type:text;not null" json:"status"`
	ErrorKind        *string        `gorm:"type:text" json:"error_kind,omitempty"`
	ErrorMessage     *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AnalysisLog) TableName() string {
	return "cv_analysis_logs"
}

// TokenUsage is the daily per-provider rollup derived from the analysis log.
type TokenUsage struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Date         time.Time `gorm:"type:date;uniqueIndex:idx_usage_date_provider;not null" json:"date"`
	Provider     string    `gorm:"type:text;uniqueIndex:idx_usage_date_provider;not null" json:"llm_provider"`
	TotalTokens  int64     `gorm:"not null" json:"total_tokens"`
	RequestCount int64     `gorm:"not null" json:"request_count"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TokenUsage) TableName() string {
	return "token_usage"
}

// ProviderUsageStats is the aggregate usage view returned by the usage query.
type ProviderUsageStats struct {
	Provider           string  `json:"llm_provider"`
	TotalTokens        int64   `json:"total_tokens"`
	TotalRequests      int64   `json:"total_requests"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
}
