package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/repositories"
)

// ErrInvalidRequest marks requests rejected before any analysis work begins.
// Rejected requests are not audited; the run never started.
var ErrInvalidRequest = errors.New("invalid analysis request")

// AnalyzerService runs the full CV analysis pipeline: extract, retrieve
// reference context, render the prompt, walk the provider candidate list,
// validate and score the response, and audit the outcome.
type AnalyzerService interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error)
	Health() map[string]string
	PromptVersions() []string
}

type analyzerService struct {
	extractor DocumentExtractor
	renderer  PromptRenderer
	selector  ProviderSelector
	retriever ContextRetriever // nil when reference retrieval is disabled
	auditRepo repositories.AuditRepository
	artifacts ArtifactStorage // nil when artifact storage is disabled
	validate  *validator.Validate
	retryMax  int
	timeout   time.Duration
}

func NewAnalyzerService(
	extractor DocumentExtractor,
	renderer PromptRenderer,
	selector ProviderSelector,
	retriever ContextRetriever,
	auditRepo repositories.AuditRepository,
	artifacts ArtifactStorage,
	cfg config.AnalysisConfig,
	retryMax int,
) AnalyzerService {
	return &analyzerService{
		extractor: extractor,
		renderer:  renderer,
		selector:  selector,
		retriever: retriever,
		auditRepo: auditRepo,
		artifacts: artifacts,
		validate:  validator.New(),
		retryMax:  retryMax,
		timeout:   cfg.RequestTimeout,
	}
}

// runOutcome accumulates what the deferred audit write needs. Exactly one
// audit record is written per accepted request, success or failure.
type runOutcome struct {
	result *models.AnalysisResult
	err    error
}

// Analyze implements AnalyzerService.
func (a *analyzerService) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	if err := a.validateRequest(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	analysisID := uuid.New()
	started := time.Now()

	outcome := &runOutcome{}
	defer a.writeAudit(req, analysisID, started, outcome)

	log.Printf("🔄 Starting analysis %s for %s (%s)\n", analysisID, req.CVFilename, req.PositionFramework.RoleTitle)

	content, err := a.extractor.Extract(req.CVFile, req.CVFilename)
	if err != nil {
		outcome.err = err
		return nil, err
	}

	referenceContext := ""
	if a.retriever != nil {
		referenceContext = a.retriever.RetrieveContext(ctx, content.Text, req.CompanyCriteria.CompanyName)
	}

	rendered, err := a.renderer.Render(req.Options.PromptVersion, PromptInputs{
		CVText:           content.Text,
		Framework:        req.PositionFramework,
		Criteria:         req.CompanyCriteria,
		Depth:            req.Options.Depth,
		ReferenceContext: referenceContext,
	})
	if err != nil {
		outcome.err = err
		return nil, err
	}

	candidates, err := a.selector.Candidates(req.Options.Provider)
	if err != nil {
		outcome.err = err
		return nil, err
	}

	scored, response, provider, err := a.runCandidates(ctx, candidates, rendered, req)
	if err != nil {
		outcome.err = err
		return nil, err
	}

	result := &models.AnalysisResult{
		AnalysisID:        analysisID,
		Timestamp:         started.UTC(),
		OverallScore:      scored.OverallScore,
		Recommendation:    scored.Recommendation,
		SectionScores:     scored.SectionScores,
		KeyStrengths:      scored.KeyStrengths,
		CriticalGaps:      scored.CriticalGaps,
		FollowUpQuestions: scored.FollowUpQuestions,
		Metadata: models.AnalysisMetadata{
			Provider:         provider.Name(),
			Model:            response.Model,
			PromptVersion:    rendered.Version,
			TokensUsed:       response.TokensUsed,
			ProcessingTimeMs: time.Since(started).Milliseconds(),
			CVPages:          content.PageCount,
		},
	}

	if response.TokensUsed > 0 {
		if err := a.auditRepo.AddTokenUsage(provider.Name(), response.TokensUsed, started); err != nil {
			log.Printf("⚠️ Failed to record token usage: %v\n", err)
		}
	}

	outcome.result = result
	log.Printf("✅ Analysis %s complete: score %d (%s) via %s\n",
		analysisID, result.OverallScore, result.Recommendation, provider.Name())

	return result, nil
}

// runCandidates walks the ordered provider list. Each vendor gets 1+retryMax
// attempts at transport level; a validation failure skips the rest of that
// vendor's budget and moves to the next candidate. Anything that is not a
// provider call or validation failure terminates the run immediately.
func (a *analyzerService) runCandidates(
	ctx context.Context,
	candidates []LLMProvider,
	rendered *RenderedPrompt,
	req *models.AnalysisRequest,
) (*ScoredAnalysis, *ProviderResponse, LLMProvider, error) {
	var lastErr *AnalysisError

	for _, provider := range candidates {
		for attempt := 0; attempt <= a.retryMax; attempt++ {
			if ctx.Err() != nil {
				return nil, nil, nil, a.timeoutError(ctx, lastErr)
			}
			if attempt > 0 {
				log.Printf("🔄 Retrying %s (attempt %d/%d)\n", provider.Name(), attempt+1, a.retryMax+1)
			}

			response, err := provider.Generate(ctx, rendered.System, rendered.User, req.Options.Depth)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, nil, a.timeoutError(ctx, lastErr)
				}
				ae, ok := AsAnalysisError(err)
				if !ok || !ae.Retryable() {
					return nil, nil, nil, err
				}
				log.Printf("⚠️ Provider %s failed: %v\n", provider.Name(), err)
				lastErr = ae
				continue
			}

			scored, err := ValidateAndScore(provider.Name(), response.Content, req.PositionFramework.ScoringWeights)
			if err != nil {
				log.Printf("⚠️ Response from %s failed validation: %v\n", provider.Name(), err)
				if ae, ok := AsAnalysisError(err); ok {
					a.saveArtifact(ae)
					lastErr = ae
					// Malformed output is not transient; the retry budget
					// covers transport failures only. Next vendor.
					break
				}
				return nil, nil, nil, err
			}

			return scored, response, provider, nil
		}
		log.Printf("🔄 Falling back from %s to next candidate\n", provider.Name())
	}

	if lastErr != nil {
		return nil, nil, nil, lastErr
	}
	return nil, nil, nil, &AnalysisError{
		Kind: ErrKindNoProviderConfigured,
		Err:  fmt.Errorf("no provider candidates available"),
	}
}

func (a *analyzerService) timeoutError(ctx context.Context, lastErr *AnalysisError) error {
	cause := ctx.Err()
	if lastErr != nil {
		cause = fmt.Errorf("%v (last provider error: %w)", ctx.Err(), lastErr)
	}
	return &AnalysisError{Kind: ErrKindAnalysisTimeout, Err: cause}
}

// saveArtifact persists the raw response behind a validation failure for
// post-hoc inspection. Best effort only.
func (a *analyzerService) saveArtifact(ae *AnalysisError) {
	if a.artifacts == nil || ae.RawResponse == "" {
		return
	}
	if path, err := a.artifacts.SaveRawResponse(uuid.New(), ae.Provider, ae.RawResponse); err != nil {
		log.Printf("⚠️ Failed to save raw response artifact: %v\n", err)
	} else {
		log.Printf("📄 Saved invalid raw response to %s\n", path)
	}
}

func (a *analyzerService) validateRequest(req *models.AnalysisRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	req.Options.Normalize()

	if err := a.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := req.PositionFramework.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if len(req.CVFile) == 0 {
		return fmt.Errorf("%w: cv file is empty", ErrInvalidRequest)
	}
	return nil
}

// writeAudit records the single audit row for an accepted request. The CV
// text itself never reaches the audit store.
func (a *analyzerService) writeAudit(req *models.AnalysisRequest, analysisID uuid.UUID, started time.Time, outcome *runOutcome) {
	record := &models.AnalysisLog{
		AnalysisID:       analysisID,
		Timestamp:        started.UTC(),
		CVFilename:       req.CVFilename,
		PositionTitle:    req.PositionFramework.RoleTitle,
		CompanyName:      req.CompanyCriteria.CompanyName,
		PromptVersion:    req.Options.PromptVersion,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}

	if outcome.result != nil {
		record.Status = models.AnalysisStatusSuccess
		record.Provider = outcome.result.Metadata.Provider
		record.Model = outcome.result.Metadata.Model
		record.PromptVersion = outcome.result.Metadata.PromptVersion
		record.TokensUsed = intPtr(outcome.result.Metadata.TokensUsed)
		record.OverallScore = intPtr(outcome.result.OverallScore)
		record.Recommendation = strPtr(string(outcome.result.Recommendation))

		if breakdown, err := json.Marshal(outcome.result.SectionScores); err == nil {
			record.SectionBreakdown = strPtr(string(breakdown))
		}
	} else {
		record.Status = models.AnalysisStatusFailed
		if ae, ok := AsAnalysisError(outcome.err); ok {
			record.ErrorKind = strPtr(string(ae.Kind))
			record.Provider = ae.Provider
		}
		if outcome.err != nil {
			record.ErrorMessage = strPtr(outcome.err.Error())
		}
	}

	if err := a.auditRepo.Create(record); err != nil {
		log.Printf("❌ Failed to write audit record for %s: %v\n", analysisID, err)
	}
}

// Health implements AnalyzerService.
func (a *analyzerService) Health() map[string]string {
	return a.selector.Health()
}

// PromptVersions implements AnalyzerService.
func (a *analyzerService) PromptVersions() []string {
	return a.renderer.Versions()
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
