package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-analyzer/internal/models"
)

func promptInputs() PromptInputs {
	years := 5
	return PromptInputs{
		CVText: "Jane Doe. Senior backend engineer with Go and Postgres experience.",
		Framework: models.PositionFramework{
			RoleTitle:               "Backend Engineer",
			KeyRequirements:         []string{"Design APIs", "Own production services"},
			ScoringWeights:          map[string]int{"technical_skills": 60, "experience": 40},
			MustHaveSkills:          []string{"Go", "PostgreSQL"},
			ExperienceYearsRequired: &years,
		},
		Criteria: models.CompanyCriteria{
			CompanyName:          "Acme Corp",
			Values:               []string{"ownership", "candor"},
			EvaluationGuidelines: "Prefer candidates with production ownership.",
			Disqualifiers:        []string{"fabricated credentials"},
		},
		Depth: models.DepthDetailed,
	}
}

func TestRenderDefaultResolvesToLatestVersion(t *testing.T) {
	renderer := NewPromptRenderer()

	rendered, err := renderer.Render("default", promptInputs())
	require.NoError(t, err)
	assert.Equal(t, "v2", rendered.Version)

	rendered, err = renderer.Render("", promptInputs())
	require.NoError(t, err)
	assert.Equal(t, "v2", rendered.Version)
}

func TestRenderSubstitutesAllInputs(t *testing.T) {
	renderer := NewPromptRenderer()

	rendered, err := renderer.Render("v2", promptInputs())
	require.NoError(t, err)

	assert.Contains(t, rendered.User, "Jane Doe")
	assert.Contains(t, rendered.User, "Backend Engineer")
	assert.Contains(t, rendered.User, "Acme Corp")
	assert.Contains(t, rendered.User, "5 years")
	assert.Contains(t, rendered.User, `"technical_skills"`)
	assert.Contains(t, rendered.User, "60%")
	assert.Contains(t, rendered.User, "fabricated credentials")
	assert.Contains(t, rendered.User, "detailed")
	assert.NotContains(t, rendered.User, "{{.")
	assert.Contains(t, rendered.System, "section_scores")
}

func TestRenderPinnedVersionStaysStable(t *testing.T) {
	renderer := NewPromptRenderer()

	rendered, err := renderer.Render("v1", promptInputs())
	require.NoError(t, err)
	assert.Equal(t, "v1", rendered.Version)
	assert.NotContains(t, rendered.User, "REFERENCE MATERIAL")
}

func TestRenderReferenceContext(t *testing.T) {
	renderer := NewPromptRenderer()

	in := promptInputs()
	in.ReferenceContext = "Rubric: production ownership is weighted heavily."
	rendered, err := renderer.Render("v2", in)
	require.NoError(t, err)
	assert.Contains(t, rendered.User, "production ownership is weighted heavily")

	in.ReferenceContext = ""
	rendered, err = renderer.Render("v2", in)
	require.NoError(t, err)
	assert.Contains(t, rendered.User, "No reference material available.")
}

func TestRenderUnknownVersion(t *testing.T) {
	renderer := NewPromptRenderer()

	_, err := renderer.Render("v99", promptInputs())
	require.Error(t, err)

	ae, ok := AsAnalysisError(err)
	require.True(t, ok)
	assert.Equal(t, ErrKindUnknownPromptVersion, ae.Kind)
	assert.False(t, ae.Retryable())
}

func TestVersionsListsRegistryOrder(t *testing.T) {
	renderer := NewPromptRenderer()
	assert.Equal(t, []string{"v1", "v2"}, renderer.Versions())
}
