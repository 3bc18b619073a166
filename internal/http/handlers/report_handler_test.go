package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/cyberreport-backend/internal/http/middleware"
	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
)

// stubReportStore реализует service.ReportStore поверх фиксированных данных.
type stubReportStore struct {
	byTracking map[string]*models.Report
}

func (s *stubReportStore) Create(ctx context.Context, report *models.Report) error {
	return nil
}

func (s *stubReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return nil, repository.ErrReportNotFound
}

func (s *stubReportStore) GetByTrackingID(ctx context.Context, trackingID string) (*models.Report, error) {
	if report, ok := s.byTracking[trackingID]; ok {
		return report, nil
	}
	return nil, repository.ErrReportNotFound
}

func (s *stubReportStore) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	return nil, nil
}

func (s *stubReportStore) ListAll(ctx context.Context, statusFilter *string) ([]models.ReportWithReporter, error) {
	return nil, nil
}

func (s *stubReportStore) UpdateFields(ctx context.Context, id uuid.UUID, status, priority, assignedTo *string) (*models.Report, error) {
	return nil, repository.ErrReportNotFound
}

func (s *stubReportStore) Withdraw(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return nil, repository.ErrReportNotFound
}

func (s *stubReportStore) Stats(ctx context.Context) (total, resolved, pending int, err error) {
	return 5, 2, 3, nil
}

func newTestReportRouter(store *stubReportStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.Init("error", "test")

	handler := NewReportHandler(service.NewReportService(store), nil, 10<<20)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/api/reports/track/:trackingId", handler.Track)
	r.GET("/api/reports/stats", handler.Stats)
	r.PUT("/api/reports/:id/withdraw", handler.Withdraw)
	r.PUT("/api/reports/:id/status", handler.UpdateStatus)
	r.POST("/api/reports/submit-authenticated", handler.Submit)
	r.GET("/api/reports/my-reports", handler.MyReports)
	return r
}

func TestReportHandler_Track_NotFound(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("GET", "/api/reports/track/CYB-20260820-1234", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_Track_ReturnsPublicProjection(t *testing.T) {
	report := &models.Report{
		ID:          uuid.New(),
		TrackingID:  "CYB-20260820-1234",
		ReporterID:  uuid.New(),
		Type:        "Фишинг",
		Description: "описание не должно попадать в публичный трекинг",
		Date:        time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Status:      models.ReportStatusInProgress,
		UpdatedAt:   time.Now(),
	}
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{report.TrackingID: report}})

	req, _ := http.NewRequest("GET", "/api/reports/track/CYB-20260820-1234", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Report map[string]interface{} `json:"report"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "CYB-20260820-1234", body.Report["tracking_id"])
	assert.Equal(t, "In Progress", body.Report["status"])
	// Проекция усечённая: описание и заявитель наружу не отдаются
	assert.NotContains(t, body.Report, "description")
	assert.NotContains(t, body.Report, "reporter_id")
}

func TestReportHandler_Stats_Public(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("GET", "/api/reports/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.ReportStats
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 48.0, stats.AvgResponseHours)
}

func TestReportHandler_Withdraw_Unauthorized(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("PUT", "/api/reports/"+uuid.NewString()+"/withdraw", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_Submit_Unauthorized(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("POST", "/api/reports/submit-authenticated", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_MyReports_Unauthorized(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("GET", "/api/reports/my-reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_UpdateStatus_InvalidID(t *testing.T) {
	r := newTestReportRouter(&stubReportStore{byTracking: map[string]*models.Report{}})

	req, _ := http.NewRequest("PUT", "/api/reports/not-a-uuid/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Submit_ForbiddenForAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Init("error", "test")

	handler := NewReportHandler(service.NewReportService(&stubReportStore{}), nil, 10<<20)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/api/reports/submit-authenticated", func(c *gin.Context) {
		c.Set(middleware.ContextIdentityKey, &models.Identity{ID: uuid.New(), Role: models.RoleAdmin})
		c.Next()
	}, handler.Submit)

	req, _ := http.NewRequest("POST", "/api/reports/submit-authenticated", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
