package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-analyzer/internal/models"
)

var testWeights = map[string]int{
	"technical_skills": 50,
	"experience":       30,
	"education":        20,
}

func analysisJSON(technical, experience, education float64) string {
	return fmt.Sprintf(`{
		"section_scores": [
			{"section": "technical_skills", "score": %g, "rationale": "strong stack"},
			{"section": "experience", "score": %g, "rationale": "relevant roles"},
			{"section": "education", "score": %g, "rationale": "solid degree"}
		],
		"key_strengths": ["Go", "Kubernetes"],
		"critical_gaps": ["no fintech background"],
		"follow_up_questions": ["Describe a production incident you handled"]
	}`, technical, experience, education)
}

func TestValidateAndScoreComputesWeightedOverall(t *testing.T) {
	scored, err := ValidateAndScore("openai", analysisJSON(80, 70, 60), testWeights)
	require.NoError(t, err)

	// 80*0.5 + 70*0.3 + 60*0.2 = 73
	assert.Equal(t, 73, scored.OverallScore)
	assert.Equal(t, models.RecommendationYes, scored.Recommendation)

	require.Len(t, scored.SectionScores, 3)
	// heaviest section first
	assert.Equal(t, "technical_skills", scored.SectionScores[0].Section)
	assert.Equal(t, 40.0, scored.SectionScores[0].WeightedScore)
	assert.Equal(t, "experience", scored.SectionScores[1].Section)
	assert.Equal(t, "education", scored.SectionScores[2].Section)
}

func TestValidateAndScoreStripsMarkdownFences(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" + analysisJSON(90, 90, 90) + "\n```\n"

	scored, err := ValidateAndScore("gemini", raw, testWeights)
	require.NoError(t, err)
	assert.Equal(t, 90, scored.OverallScore)
	assert.Equal(t, models.RecommendationStrongYes, scored.Recommendation)
}

func TestValidateAndScoreNormalizesSectionLabels(t *testing.T) {
	raw := `{
		"section_scores": [
			{"section": "Technical Skills", "score": 50, "rationale": "ok"},
			{"section": "Experience", "score": 50, "rationale": "ok"},
			{"section": "EDUCATION", "score": 50, "rationale": "ok"}
		],
		"key_strengths": [],
		"critical_gaps": [],
		"follow_up_questions": []
	}`

	scored, err := ValidateAndScore("anthropic", raw, testWeights)
	require.NoError(t, err)
	assert.Equal(t, 50, scored.OverallScore)
	assert.Equal(t, "technical_skills", scored.SectionScores[0].Section)
}

func TestValidateAndScoreUsesRequestWeightsNotModelClaims(t *testing.T) {
	// Model reports its own weight and weighted_score fields; both must be
	// ignored in favor of the requested weights.
	raw := `{
		"section_scores": [
			{"section": "technical_skills", "score": 100, "weight": 1, "weighted_score": 1, "rationale": "ok"},
			{"section": "experience", "score": 0, "rationale": "ok"},
			{"section": "education", "score": 0, "rationale": "ok"}
		],
		"key_strengths": ["a"],
		"critical_gaps": ["b"],
		"follow_up_questions": ["c"]
	}`

	scored, err := ValidateAndScore("openai", raw, testWeights)
	require.NoError(t, err)
	assert.Equal(t, 50, scored.OverallScore)
	assert.Equal(t, 50.0, scored.SectionScores[0].Weight)
}

func TestRecommendationBands(t *testing.T) {
	cases := []struct {
		score int
		want  models.Recommendation
	}{
		{100, models.RecommendationStrongYes},
		{85, models.RecommendationStrongYes},
		{84, models.RecommendationYes},
		{70, models.RecommendationYes},
		{69, models.RecommendationMaybe},
		{50, models.RecommendationMaybe},
		{49, models.RecommendationNo},
		{30, models.RecommendationNo},
		{29, models.RecommendationStrongNo},
		{0, models.RecommendationStrongNo},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RecommendationForScore(tc.score), "score %d", tc.score)
	}
}

func TestValidateAndScoreRejectsInvalidResponses(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "I cannot analyze this CV."},
		{"missing section", `{
			"section_scores": [{"section": "technical_skills", "score": 80, "rationale": "ok"}],
			"key_strengths": [], "critical_gaps": [], "follow_up_questions": []
		}`},
		{"unexpected section", `{
			"section_scores": [
				{"section": "technical_skills", "score": 80, "rationale": "ok"},
				{"section": "experience", "score": 80, "rationale": "ok"},
				{"section": "education", "score": 80, "rationale": "ok"},
				{"section": "vibes", "score": 80, "rationale": "ok"}
			],
			"key_strengths": [], "critical_gaps": [], "follow_up_questions": []
		}`},
		{"duplicate section", `{
			"section_scores": [
				{"section": "technical_skills", "score": 80, "rationale": "ok"},
				{"section": "Technical Skills", "score": 70, "rationale": "ok"},
				{"section": "experience", "score": 80, "rationale": "ok"},
				{"section": "education", "score": 80, "rationale": "ok"}
			],
			"key_strengths": [], "critical_gaps": [], "follow_up_questions": []
		}`},
		{"score out of range", analysisJSON(120, 50, 50)},
		{"missing key_strengths", `{
			"section_scores": [
				{"section": "technical_skills", "score": 80, "rationale": "ok"},
				{"section": "experience", "score": 80, "rationale": "ok"},
				{"section": "education", "score": 80, "rationale": "ok"}
			],
			"critical_gaps": [], "follow_up_questions": []
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateAndScore("openai", tc.raw, testWeights)
			require.Error(t, err)

			ae, ok := AsAnalysisError(err)
			require.True(t, ok)
			assert.Equal(t, ErrKindResponseValidation, ae.Kind)
			assert.Equal(t, "openai", ae.Provider)
			assert.Equal(t, tc.raw, ae.RawResponse, "raw response must survive for audit")
			assert.True(t, ae.Retryable())
		})
	}
}

func TestValidateAndScoreClampsOverall(t *testing.T) {
	scored, err := ValidateAndScore("openai", analysisJSON(100, 100, 100), testWeights)
	require.NoError(t, err)
	assert.Equal(t, 100, scored.OverallScore)

	scored, err = ValidateAndScore("openai", analysisJSON(0, 0, 0), testWeights)
	require.NoError(t, err)
	assert.Equal(t, 0, scored.OverallScore)
	assert.Equal(t, models.RecommendationStrongNo, scored.Recommendation)
}
