package models

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation string

const (
	RecommendationStrongYes Recommendation = "strong_yes"
	RecommendationYes       Recommendation = "yes"
	RecommendationMaybe     Recommendation = "maybe"
	RecommendationNo        Recommendation = "no"
	RecommendationStrongNo  Recommendation = "strong_no"
)

// SectionScore is one evaluation dimension as rated by the model and
// validated on ingestion. WeightedScore is always score * weight / 100.
type SectionScore struct {
	Section       string  `json:"section"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
	Rationale     string  `json:"rationale"`
}

type AnalysisMetadata struct {
	Provider         string `json:"llm_provider"`
	Model            string `json:"model"`
	PromptVersion    string `json:"prompt_version"`
	TokensUsed       int    `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	CVPages          int    `json:"cv_pages,omitempty"`
}

// AnalysisResult is the sole artifact of a successful run; the original CV
// content is never retained.
type AnalysisResult struct {
	AnalysisID        uuid.UUID        `json:"analysis_id"`
	Timestamp         time.Time        `json:"timestamp"`
	OverallScore      int              `json:"overall_score"`
	Recommendation    Recommendation   `json:"recommendation"`
	SectionScores     []SectionScore   `json:"section_scores"`
	KeyStrengths      []string         `json:"key_strengths"`
	CriticalGaps      []string         `json:"critical_gaps"`
	FollowUpQuestions []string         `json:"follow_up_questions"`
	Metadata          AnalysisMetadata `json:"metadata"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Providers map[string]string `json:"llm_providers"`
}
