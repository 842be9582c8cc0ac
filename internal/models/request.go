package models

import (
	"fmt"
	"strings"
)

type AnalysisDepth string

const (
	DepthQuick    AnalysisDepth = "quick"
	DepthDetailed AnalysisDepth = "detailed"
)

// PositionFramework describes what the role requires and how each
// evaluation section is weighted. Immutable once received.
type PositionFramework struct {
	RoleTitle               string         `json:"role_title" validate:"required,min=1"`
	KeyRequirements         []string       `json:"key_requirements"`
	ScoringWeights          map[string]int `json:"scoring_weights" validate:"required,min=1"`
	MustHaveSkills          []string       `json:"must_have_skills"`
	NiceToHaveSkills        []string       `json:"nice_to_have_skills"`
	ExperienceYearsRequired *int           `json:"experience_years_required,omitempty" validate:"omitempty,gte=0"`
}

// Validate enforces the weight invariant: every weight in [0,100] and the
// total exactly 100. A request is rejected before any work happens otherwise.
func (pf *PositionFramework) Validate() error {
	if len(pf.ScoringWeights) == 0 {
		return fmt.Errorf("scoring_weights must not be empty")
	}

	total := 0
	for section, weight := range pf.ScoringWeights {
		if weight < 0 || weight > 100 {
			return fmt.Errorf("weight for section %q must be between 0 and 100, got %d", section, weight)
		}
		total += weight
	}

	if total != 100 {
		return fmt.Errorf("scoring weights must sum to 100, got %d", total)
	}

	return nil
}

// CompanyCriteria carries the company-wide evaluation standards.
// Immutable once received.
type CompanyCriteria struct {
	CompanyName          string   `json:"company_name" validate:"required,min=1"`
	Values               []string `json:"values"`
	EvaluationGuidelines string   `json:"evaluation_guidelines"`
	Disqualifiers        []string `json:"disqualifiers"`
	PreferredBackgrounds []string `json:"preferred_backgrounds,omitempty"`
}

// AnalysisOptions configures one analysis run.
type AnalysisOptions struct {
	Provider      string        `json:"llm_provider" validate:"omitempty,oneof=auto openai anthropic gemini"`
	PromptVersion string        `json:"prompt_version"`
	Depth         AnalysisDepth `json:"analysis_depth" validate:"omitempty,oneof=quick detailed"`
}

// Normalize fills defaults the way the request layer expects them.
func (o *AnalysisOptions) Normalize() {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = "auto"
	}
	if o.PromptVersion == "" {
		o.PromptVersion = "default"
	}
	if o.Depth == "" {
		o.Depth = DepthDetailed
	}
}

// AnalysisRequest is the single inbound unit of work. The CV bytes live only
// for the duration of the run; only audit metadata survives it.
type AnalysisRequest struct {
	CVFile            []byte            `json:"-" validate:"required"`
	CVFilename        string            `json:"cv_filename" validate:"required,min=1"`
	PositionFramework PositionFramework `json:"position_framework" validate:"required"`
	CompanyCriteria   CompanyCriteria   `json:"company_criteria" validate:"required"`
	Options           AnalysisOptions   `json:"config"`
}
