package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// modelAnalysis mirrors the JSON schema the system prompt pins.
type modelAnalysis struct {
	SectionScores     []modelSectionScore `json:"section_scores"`
	KeyStrengths      []string            `json:"key_strengths"`
	CriticalGaps      []string            `json:"critical_gaps"`
	FollowUpQuestions []string            `json:"follow_up_questions"`
}

type modelSectionScore struct {
	Section   string  `json:"section"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ScoredAnalysis is the validated, deterministically aggregated outcome of
// one model response.
type ScoredAnalysis struct {
	OverallScore      int
	Recommendation    models.Recommendation
	SectionScores     []models.SectionScore
	KeyStrengths      []string
	CriticalGaps      []string
	FollowUpQuestions []string
}

// ValidateAndScore parses raw model output against the requested scoring
// weights, recomputes every weighted contribution, and derives the overall
// score and recommendation. The model's own opinion of the overall outcome is
// never trusted. On failure the raw text travels with the error for audit.
func ValidateAndScore(provider, raw string, weights map[string]int) (*ScoredAnalysis, error) {
	parsed, err := parseModelAnalysis(raw)
	if err != nil {
		return nil, newResponseValidationError(provider, raw, err)
	}

	if err := checkRequiredFields(parsed); err != nil {
		return nil, newResponseValidationError(provider, raw, err)
	}

	sections, err := matchSections(parsed.SectionScores, weights)
	if err != nil {
		return nil, newResponseValidationError(provider, raw, err)
	}

	total := 0.0
	for _, section := range sections {
		total += section.WeightedScore
	}

	overall := int(math.Round(total))
	if overall < 0 {
		overall = 0
	} else if overall > 100 {
		overall = 100
	}

	return &ScoredAnalysis{
		OverallScore:      overall,
		Recommendation:    RecommendationForScore(overall),
		SectionScores:     sections,
		KeyStrengths:      parsed.KeyStrengths,
		CriticalGaps:      parsed.CriticalGaps,
		FollowUpQuestions: parsed.FollowUpQuestions,
	}, nil
}

// RecommendationForScore maps an overall score onto the fixed policy bands.
// The thresholds are a policy constant, independent of model phrasing.
func RecommendationForScore(overall int) models.Recommendation {
	switch {
	case overall >= 85:
		return models.RecommendationStrongYes
	case overall >= 70:
		return models.RecommendationYes
	case overall >= 50:
		return models.RecommendationMaybe
	case overall >= 30:
		return models.RecommendationNo
	default:
		return models.RecommendationStrongNo
	}
}

func parseModelAnalysis(raw string) (*modelAnalysis, error) {
	jsonStr := extractJSON(raw)

	var parsed modelAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("response is not valid analysis JSON: %w", err)
	}
	return &parsed, nil
}

func checkRequiredFields(parsed *modelAnalysis) error {
	if len(parsed.SectionScores) == 0 {
		return fmt.Errorf("missing required field: section_scores")
	}
	if parsed.KeyStrengths == nil {
		return fmt.Errorf("missing required field: key_strengths")
	}
	if parsed.CriticalGaps == nil {
		return fmt.Errorf("missing required field: critical_gaps")
	}
	if parsed.FollowUpQuestions == nil {
		return fmt.Errorf("missing required field: follow_up_questions")
	}
	return nil
}

// matchSections verifies the returned section set equals the requested
// weight keys and rebuilds each SectionScore with the authoritative weight.
func matchSections(scores []modelSectionScore, weights map[string]int) ([]models.SectionScore, error) {
	seen := make(map[string]bool, len(scores))
	sections := make([]models.SectionScore, 0, len(scores))

	for _, score := range scores {
		key := canonicalSection(score.Section)

		weight, ok := weights[key]
		if !ok {
			return nil, fmt.Errorf("unexpected section %q in response", score.Section)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate section %q in response", score.Section)
		}
		seen[key] = true

		if score.Score < 0 || score.Score > 100 {
			return nil, fmt.Errorf("section %q score %.1f is outside [0,100]", score.Section, score.Score)
		}

		sections = append(sections, models.SectionScore{
			Section:       key,
			Score:         score.Score,
			Weight:        float64(weight),
			WeightedScore: score.Score * float64(weight) / 100,
			Rationale:     score.Rationale,
		})
	}

	for key := range weights {
		if !seen[key] {
			return nil, fmt.Errorf("missing required section %q in response", key)
		}
	}

	// Deterministic ordering: heaviest sections first
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Weight != sections[j].Weight {
			return sections[i].Weight > sections[j].Weight
		}
		return sections[i].Section < sections[j].Section
	})

	return sections, nil
}

// canonicalSection normalizes a model-reported section label onto the weight
// key form ("Technical Skills" -> "technical_skills").
func canonicalSection(section string) string {
	section = strings.ToLower(strings.TrimSpace(section))
	return strings.ReplaceAll(section, " ", "_")
}

// extractJSON pulls the JSON object out of text that might wrap it in
// markdown or commentary.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
