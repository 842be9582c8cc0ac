package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// fakeAuditRepo wraps gorm.ErrRecordNotFound the same way the real
// repository does, so the handler's not-found mapping is tested against the
// wrapped form.
type fakeAuditRepo struct {
	records map[uuid.UUID]*models.AnalysisLog
}

func (r *fakeAuditRepo) Create(record *models.AnalysisLog) error { return nil }

func (r *fakeAuditRepo) AddTokenUsage(provider string, tokens int, day time.Time) error {
	return nil
}

func (r *fakeAuditRepo) FindByAnalysisID(analysisID uuid.UUID) (*models.AnalysisLog, error) {
	record, ok := r.records[analysisID]
	if !ok {
		return nil, fmt.Errorf("analysis log not found: %w", gorm.ErrRecordNotFound)
	}
	return record, nil
}

func (r *fakeAuditRepo) Recent(limit int) ([]models.AnalysisLog, error) { return nil, nil }

func (r *fakeAuditRepo) UsageStats(days int) ([]models.ProviderUsageStats, error) {
	return nil, nil
}

func (r *fakeAuditRepo) Count() (int64, error) { return int64(len(r.records)), nil }

func auditTestApp(repo *fakeAuditRepo) *fiber.App {
	app := fiber.New()
	handler := NewAuditHandler(repo)
	app.Get("/api/v1/analyses/:id", handler.HandleGetAnalysis)
	return app
}

func TestGetAnalysisUnknownIDReturns404(t *testing.T) {
	app := auditTestApp(&fakeAuditRepo{records: map[uuid.UUID]*models.AnalysisLog{}})

	req := httptest.NewRequest("GET", "/api/v1/analyses/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetAnalysisKnownID(t *testing.T) {
	analysisID := uuid.New()
	repo := &fakeAuditRepo{records: map[uuid.UUID]*models.AnalysisLog{
		analysisID: {AnalysisID: analysisID, CVFilename: "candidate.pdf", Status: models.AnalysisStatusSuccess},
	}}
	app := auditTestApp(repo)

	req := httptest.NewRequest("GET", "/api/v1/analyses/"+analysisID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetAnalysisMalformedIDReturns400(t *testing.T) {
	app := auditTestApp(&fakeAuditRepo{records: map[uuid.UUID]*models.AnalysisLog{}})

	req := httptest.NewRequest("GET", "/api/v1/analyses/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
