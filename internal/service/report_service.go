package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
	"github.com/ignatzorin/cyberreport-backend/internal/validation"
)

// trackingIDMaxAttempts ограничивает повторные попытки вставки при коллизии
// трекинг-номера. 4 случайные цифры в сутки — коллизии реальны.
const trackingIDMaxAttempts = 5

// statsAvgResponseHoursPlaceholder — заглушка среднего времени реакции.
// Из данных не считается, пока продукт не определит методику.
const statsAvgResponseHoursPlaceholder = 48.0

// ReportStore описывает зависимости ReportService от хранилища обращений.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error)
	ListAll(ctx context.Context, statusFilter *string) ([]models.ReportWithReporter, error)
	UpdateFields(ctx context.Context, id uuid.UUID, status, priority, assignedTo *string) (*models.Report, error)
	Withdraw(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Stats(ctx context.Context) (total, resolved, pending int, err error)
}

// ReportService инкапсулирует жизненный цикл обращения.
type ReportService struct {
	repo ReportStore
	now  func() time.Time
}

// SubmitInput содержит данные нового обращения.
type SubmitInput struct {
	Type        string
	Description string
	Date        string
	Evidence    *string
}

// UpdateStatusInput содержит частичное админское обновление.
// Nil-поле означает «не трогать».
type UpdateStatusInput struct {
	Status     *string
	Priority   *string
	AssignedTo *string
}

// TrackingView — публичная проекция обращения для анонимного трекинга.
// Намеренно уже полной записи: эндпоинт доступен любому, кто знает номер.
type TrackingView struct {
	TrackingID string    `json:"tracking_id"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Date       time.Time `json:"date"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReportService создаёт сервис обращений.
func NewReportService(repo ReportStore) *ReportService {
	return &ReportService{
		repo: repo,
		now:  time.Now,
	}
}

// Submit валидирует и сохраняет новое обращение. Коллизия трекинг-номера —
// повторяемая ошибка вставки: пробуем заново со свежим номером.
func (s *ReportService) Submit(ctx context.Context, reporterID uuid.UUID, in SubmitInput) (*models.Report, error) {
	if err := validation.ValidateReportType(in.Type); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReportDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	date, err := validation.ParseIncidentDate(in.Date)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	for attempt := 0; attempt < trackingIDMaxAttempts; attempt++ {
		report := &models.Report{
			TrackingID:  s.generateTrackingID(),
			ReporterID:  reporterID,
			Type:        strings.TrimSpace(in.Type),
			Description: strings.TrimSpace(in.Description),
			Date:        date,
			Evidence:    in.Evidence,
		}

		err := s.repo.Create(ctx, report)
		if err == nil {
			return report, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTrackingID) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("report service: не удалось подобрать уникальный трекинг-номер за %d попыток", trackingIDMaxAttempts)
}

// ListMine возвращает обращения заявителя, новые первыми.
func (s *ReportService) ListMine(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	return s.repo.ListByReporter(ctx, reporterID)
}

// Track возвращает публичный статус обращения по трекинг-номеру.
func (s *ReportService) Track(ctx context.Context, trackingID string) (*TrackingView, error) {
	report, err := s.repo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	return &TrackingView{
		TrackingID: report.TrackingID,
		Status:     report.Status,
		Type:       report.Type,
		Date:       report.Date,
		UpdatedAt:  report.UpdatedAt,
	}, nil
}

// ListAll возвращает все обращения для панели триажа.
func (s *ReportService) ListAll(ctx context.Context, statusFilter *string) ([]models.ReportWithReporter, error) {
	if statusFilter != nil {
		if _, ok := models.ValidReportStatuses[*statusFilter]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус: "+*statusFilter)
		}
	}

	return s.repo.ListAll(ctx, statusFilter)
}

// UpdateStatus применяет частичное админское обновление. Проверяется только
// принадлежность значений enum'ам; флаг withdrawn не смотрим — админ может
// выставить отозванному обращению любой статус, поля разойдутся.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID uuid.UUID, in UpdateStatusInput) (*models.Report, error) {
	if in.Status == nil && in.Priority == nil && in.AssignedTo == nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "нет полей для обновления")
	}

	if in.Status != nil {
		if _, ok := models.ValidReportStatuses[*in.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус: "+*in.Status)
		}
	}
	if in.Priority != nil {
		if _, ok := models.ValidReportPriorities[*in.Priority]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный приоритет: "+*in.Priority)
		}
	}

	report, err := s.repo.UpdateFields(ctx, reportID, in.Status, in.Priority, in.AssignedTo)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	return report, nil
}

// Withdraw отзывает обращение. Разрешён только владельцу и только один раз;
// сам отзыв — один условный UPDATE, проверка владения идёт до него и с
// конкурентным админским обновлением не сериализуется.
func (s *ReportService) Withdraw(ctx context.Context, reportID, callerID uuid.UUID) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	if report.ReporterID != callerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя отозвать чужое обращение")
	}

	if report.Withdrawn {
		return nil, apperror.ErrAlreadyWithdrawn
	}

	withdrawn, err := s.repo.Withdraw(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportAlreadyWithdrawn) {
			return nil, apperror.ErrAlreadyWithdrawn
		}
		return nil, err
	}

	return withdrawn, nil
}

// Stats возвращает агрегаты дашборда.
func (s *ReportService) Stats(ctx context.Context) (*models.ReportStats, error) {
	total, resolved, pending, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ReportStats{
		Total:            total,
		Resolved:         resolved,
		Pending:          pending,
		AvgResponseHours: statsAvgResponseHoursPlaceholder,
	}, nil
}

// generateTrackingID формирует публичный номер вида CYB-YYYYMMDD-NNNN.
// Формат — публичный контракт трекинга, менять нельзя. Глобальный генератор
// math/rand безопасен для конкурентных запросов.
func (s *ReportService) generateTrackingID() string {
	date := s.now().Format("20060102")
	random := 1000 + rand.Intn(9000)
	return fmt.Sprintf("CYB-%s-%d", date, random)
}
