package services

import (
	"fmt"
	"sort"
	"strings"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// DefaultPromptVersion is the sentinel resolving to the most recently
// registered template.
const DefaultPromptVersion = "default"

// analysisSystemPrompt pins the exact JSON schema the model must produce.
// It is shared by every registered version so the validator always sees the
// same structure.
const analysisSystemPrompt = `You are an expert HR analyst specializing in candidate evaluation.
Your task is to analyze CVs objectively and provide structured, data-driven assessments.

IMPORTANT: You must respond with valid JSON only. Do not include any text outside the JSON structure.

The JSON response must have this exact structure:
{
  "section_scores": [
    {
      "section": "<section name>",
      "score": <number 0-100>,
      "weight": <number 0-100>,
      "weighted_score": <calculated: score * weight / 100>,
      "rationale": "<explanation>"
    }
  ],
  "key_strengths": ["<strength 1>", "<strength 2>", ...],
  "critical_gaps": ["<gap 1>", "<gap 2>", ...],
  "follow_up_questions": ["<question 1>", "<question 2>", ...]
}

Score every section named in the scoring weights, and only those sections.
Be objective, thorough, and ensure all scores are justified with clear rationale.`

const analysisUserPromptV1 = `Analyze the following CV against the position requirements and company criteria.

=== POSITION INFORMATION ===
Role: {{.RoleTitle}}

Key Requirements:
{{.KeyRequirements}}

Must-Have Skills: {{.MustHaveSkills}}
Nice-to-Have Skills: {{.NiceToHaveSkills}}

Scoring Weights:
{{.ScoringWeights}}

=== COMPANY CRITERIA ===
Company: {{.CompanyName}}
Core Values: {{.CompanyValues}}

Evaluation Guidelines:
{{.EvaluationGuidelines}}

Disqualifiers:
{{.Disqualifiers}}

=== CANDIDATE CV ===
{{.CVText}}

=== ANALYSIS INSTRUCTIONS ===
1. Score the candidate on every section listed under Scoring Weights
2. Calculate weighted scores based on the provided weights
3. Identify 3-5 key strengths with specific evidence from the CV
4. Identify 2-4 critical gaps or concerns
5. Generate 4-6 thoughtful follow-up interview questions

Analysis Depth: {{.AnalysisDepth}}

Respond with ONLY the JSON structure specified in the system prompt.`

// v2 adds the retrieved reference context and the experience/background
// criteria the first version left implicit.
const analysisUserPromptV2 = `Analyze the following CV against the position requirements and company criteria.

=== POSITION INFORMATION ===
Role: {{.RoleTitle}}
Minimum Experience: {{.ExperienceYears}}

Key Requirements:
{{.KeyRequirements}}

Must-Have Skills: {{.MustHaveSkills}}
Nice-to-Have Skills: {{.NiceToHaveSkills}}

Scoring Weights:
{{.ScoringWeights}}

=== COMPANY CRITERIA ===
Company: {{.CompanyName}}
Core Values: {{.CompanyValues}}
Preferred Backgrounds: {{.PreferredBackgrounds}}

Evaluation Guidelines:
{{.EvaluationGuidelines}}

Disqualifiers:
{{.Disqualifiers}}

=== REFERENCE MATERIAL ===
{{.ReferenceContext}}

=== CANDIDATE CV ===
{{.CVText}}

=== ANALYSIS INSTRUCTIONS ===
1. Score the candidate on every section listed under Scoring Weights, and only those sections
2. Calculate weighted scores based on the provided weights
3. Treat any matched disqualifier as a hard cap: no affected section may score above 30
4. Identify 3-5 key strengths with specific evidence from the CV
5. Identify 2-4 critical gaps or concerns
6. Generate 4-6 thoughtful follow-up interview questions

Analysis Depth: {{.AnalysisDepth}}

Respond with ONLY the JSON structure specified in the system prompt.`

type PromptTemplate struct {
	Version string
	System  string
	User    string
}

// promptRegistry is append-only: new versions go at the end, and the last
// entry is what "default" resolves to. Existing entries are never edited so
// a pinned version keeps producing identical prompts.
var promptRegistry = []PromptTemplate{
	{Version: "v1", System: analysisSystemPrompt, User: analysisUserPromptV1},
	{Version: "v2", System: analysisSystemPrompt, User: analysisUserPromptV2},
}

type PromptInputs struct {
	CVText           string
	Framework        models.PositionFramework
	Criteria         models.CompanyCriteria
	Depth            models.AnalysisDepth
	ReferenceContext string
}

type RenderedPrompt struct {
	Version string
	System  string
	User    string
}

type PromptRenderer interface {
	Render(version string, in PromptInputs) (*RenderedPrompt, error)
	Versions() []string
}

type promptRenderer struct {
	byVersion map[string]PromptTemplate
	latest    string
}

func NewPromptRenderer() PromptRenderer {
	byVersion := make(map[string]PromptTemplate, len(promptRegistry))
	for _, tmpl := range promptRegistry {
		byVersion[tmpl.Version] = tmpl
	}

	return &promptRenderer{
		byVersion: byVersion,
		latest:    promptRegistry[len(promptRegistry)-1].Version,
	}
}

// Render implements PromptRenderer.
func (p *promptRenderer) Render(version string, in PromptInputs) (*RenderedPrompt, error) {
	if version == "" || version == DefaultPromptVersion {
		version = p.latest
	}

	tmpl, ok := p.byVersion[version]
	if !ok {
		return nil, newUnknownPromptVersionError(version)
	}

	return &RenderedPrompt{
		Version: tmpl.Version,
		System:  tmpl.System,
		User:    substitutePlaceholders(tmpl.User, in),
	}, nil
}

// Versions implements PromptRenderer.
func (p *promptRenderer) Versions() []string {
	versions := make([]string, 0, len(promptRegistry))
	for _, tmpl := range promptRegistry {
		versions = append(versions, tmpl.Version)
	}
	return versions
}

func substitutePlaceholders(template string, in PromptInputs) string {
	experience := "Not specified"
	if in.Framework.ExperienceYearsRequired != nil {
		experience = fmt.Sprintf("%d years", *in.Framework.ExperienceYearsRequired)
	}

	reference := strings.TrimSpace(in.ReferenceContext)
	if reference == "" {
		reference = "No reference material available."
	}

	replacements := map[string]string{
		"CVText":               in.CVText,
		"RoleTitle":            orNotSpecified(in.Framework.RoleTitle),
		"KeyRequirements":      bulletList(in.Framework.KeyRequirements),
		"MustHaveSkills":       joinedList(in.Framework.MustHaveSkills),
		"NiceToHaveSkills":     joinedList(in.Framework.NiceToHaveSkills),
		"ScoringWeights":       weightTable(in.Framework.ScoringWeights),
		"ExperienceYears":      experience,
		"CompanyName":          orNotSpecified(in.Criteria.CompanyName),
		"CompanyValues":        joinedList(in.Criteria.Values),
		"EvaluationGuidelines": orNotSpecified(in.Criteria.EvaluationGuidelines),
		"Disqualifiers":        joinedList(in.Criteria.Disqualifiers),
		"PreferredBackgrounds": joinedList(in.Criteria.PreferredBackgrounds),
		"ReferenceContext":     reference,
		"AnalysisDepth":        string(in.Depth),
	}

	result := template
	for key, value := range replacements {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}

// weightTable renders scoring weights sorted by name so the same inputs
// always yield the same prompt text.
func weightTable(weights map[string]int) string {
	sections := make([]string, 0, len(weights))
	for section := range weights {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	var lines []string
	for _, section := range sections {
		lines = append(lines, fmt.Sprintf("- %s (use section name %q): %d%%", titleCase(section), section, weights[section]))
	}
	return strings.Join(lines, "\n")
}

func titleCase(section string) string {
	words := strings.Split(strings.ReplaceAll(section, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func joinedList(items []string) string {
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not specified"
	}
	return value
}
