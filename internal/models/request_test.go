package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionFrameworkValidate(t *testing.T) {
	framework := PositionFramework{
		RoleTitle: "Backend Engineer",
		ScoringWeights: map[string]int{
			"technical_skills": 50,
			"experience":       30,
			"education":        20,
		},
	}
	require.NoError(t, framework.Validate())
}

func TestPositionFrameworkValidateRejectsBadWeights(t *testing.T) {
	cases := []struct {
		name    string
		weights map[string]int
	}{
		{"empty", map[string]int{}},
		{"sum below 100", map[string]int{"technical_skills": 50, "experience": 30}},
		{"sum above 100", map[string]int{"technical_skills": 80, "experience": 30}},
		{"negative weight", map[string]int{"technical_skills": 120, "experience": -20}},
		{"weight above 100", map[string]int{"technical_skills": 101}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			framework := PositionFramework{RoleTitle: "x", ScoringWeights: tc.weights}
			assert.Error(t, framework.Validate())
		})
	}
}

func TestPositionFrameworkValidateSingleFullWeight(t *testing.T) {
	framework := PositionFramework{
		RoleTitle:      "Backend Engineer",
		ScoringWeights: map[string]int{"technical_skills": 100},
	}
	assert.NoError(t, framework.Validate())
}

func TestAnalysisOptionsNormalize(t *testing.T) {
	options := AnalysisOptions{}
	options.Normalize()

	assert.Equal(t, "auto", options.Provider)
	assert.Equal(t, "default", options.PromptVersion)
	assert.Equal(t, DepthDetailed, options.Depth)
}

func TestAnalysisOptionsNormalizeKeepsExplicitValues(t *testing.T) {
	options := AnalysisOptions{
		Provider:      " Anthropic ",
		PromptVersion: "v1",
		Depth:         DepthQuick,
	}
	options.Normalize()

	assert.Equal(t, "anthropic", options.Provider)
	assert.Equal(t, "v1", options.PromptVersion)
	assert.Equal(t, DepthQuick, options.Depth)
}
