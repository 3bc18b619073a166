package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
	"github.com/ignatzorin/cyberreport-backend/internal/storage"
)

// ReportHandler обслуживает жизненный цикл обращений.
type ReportHandler struct {
	reports          *service.ReportService
	storage          *storage.FileStorage
	maxEvidenceBytes int64
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService, store *storage.FileStorage, maxEvidenceBytes int64) *ReportHandler {
	return &ReportHandler{
		reports:          reports,
		storage:          store,
		maxEvidenceBytes: maxEvidenceBytes,
	}
}

// Submit обрабатывает POST /api/reports/submit-authenticated.
// Подача доступна только заявителям; multipart форма с опциональным
// файлом доказательства.
func (h *ReportHandler) Submit(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	if identity.Role != models.RoleReporter {
		c.Error(apperror.New(apperror.ErrCodeForbidden, "подача обращений доступна только заявителям"))
		return
	}

	in := service.SubmitInput{
		Type:        c.PostForm("type"),
		Description: c.PostForm("description"),
		Date:        c.PostForm("date"),
	}

	if file, err := c.FormFile("evidence"); err == nil {
		path, err := saveUpload(c, h.storage, file, storage.KindEvidence, evidenceMimeTypes, h.maxEvidenceBytes)
		if err != nil {
			c.Error(err)
			return
		}
		in.Evidence = &path
	}

	report, err := h.reports.Submit(c.Request.Context(), identity.ID, in)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "обращение зарегистрировано",
		"trackingId": report.TrackingID,
		"report":     report,
	})
}

// MyReports обрабатывает GET /api/reports/my-reports.
func (h *ReportHandler) MyReports(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}
	if identity.Role != models.RoleReporter {
		c.Error(apperror.New(apperror.ErrCodeForbidden, "список своих обращений доступен только заявителям"))
		return
	}

	reports, err := h.reports.ListMine(c.Request.Context(), identity.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Track обрабатывает GET /api/reports/track/:trackingId.
// Публичный эндпоинт: авторизация не требуется, отдаётся усечённая проекция.
func (h *ReportHandler) Track(c *gin.Context) {
	trackingID := c.Param("trackingId")

	view, err := h.reports.Track(c.Request.Context(), trackingID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": view})
}

// Withdraw обрабатывает PUT /api/reports/:id/withdraw.
// Отозвать обращение может только его автор.
func (h *ReportHandler) Withdraw(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор обращения")
		return
	}

	report, err := h.reports.Withdraw(c.Request.Context(), reportID, identity.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "обращение отозвано",
		"report":  report,
	})
}

// ListAll обрабатывает GET /api/reports/all. Только для администраторов.
// Поддерживает фильтр ?status=.
func (h *ReportHandler) ListAll(c *gin.Context) {
	var statusFilter *string
	if v := c.Query("status"); v != "" {
		statusFilter = &v
	}

	reports, err := h.reports.ListAll(c.Request.Context(), statusFilter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// UpdateStatus обрабатывает PUT /api/reports/:id/status. Только для
// администраторов; частичное обновление статуса, приоритета и исполнителя.
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор обращения")
		return
	}

	var req struct {
		Status     *string `json:"status"`
		Priority   *string `json:"priority"`
		AssignedTo *string `json:"assignedTo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "некорректное тело запроса")
		return
	}

	report, err := h.reports.UpdateStatus(c.Request.Context(), reportID, service.UpdateStatusInput{
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "обращение обновлено",
		"report":  report,
	})
}

// Stats обрабатывает GET /api/reports/stats. Публичная статистика
// для главной страницы.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
