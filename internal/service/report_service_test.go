package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
)

// mockReportStore реализует ReportStore для тестов. Доступ к картам защищён
// мьютексом, чтобы мок можно было использовать в конкурентных сценариях.
type mockReportStore struct {
	mu          sync.Mutex
	reports     map[uuid.UUID]*models.Report
	duplicates  int // сколько первых вставок вернёт коллизию трекинг-номера
	createCalls int
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{
		reports: make(map[uuid.UUID]*models.Report),
	}
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.duplicates > 0 {
		m.duplicates--
		return repository.ErrDuplicateTrackingID
	}

	now := time.Now()
	report.ID = uuid.New()
	report.Status = models.ReportStatusPending
	report.Priority = models.ReportPriorityMedium
	report.CreatedAt = now
	report.UpdatedAt = now

	stored := *report
	m.reports[report.ID] = &stored
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if report, ok := m.reports[id]; ok {
		copied := *report
		return &copied, nil
	}
	return nil, repository.ErrReportNotFound
}

func (m *mockReportStore) GetByTrackingID(ctx context.Context, trackingID string) (*models.Report, error) {
	for _, report := range m.reports {
		if report.TrackingID == trackingID {
			copied := *report
			return &copied, nil
		}
	}
	return nil, repository.ErrReportNotFound
}

func (m *mockReportStore) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	var out []models.Report
	for _, report := range m.reports {
		if report.ReporterID == reporterID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (m *mockReportStore) ListAll(ctx context.Context, statusFilter *string) ([]models.ReportWithReporter, error) {
	var out []models.ReportWithReporter
	for _, report := range m.reports {
		if statusFilter != nil && report.Status != *statusFilter {
			continue
		}
		out = append(out, models.ReportWithReporter{Report: *report})
	}
	return out, nil
}

func (m *mockReportStore) UpdateFields(ctx context.Context, id uuid.UUID, status, priority, assignedTo *string) (*models.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}

	// Как и в настоящем репозитории, флаг withdrawn здесь не проверяется.
	if status != nil {
		report.Status = *status
	}
	if priority != nil {
		report.Priority = *priority
	}
	if assignedTo != nil {
		report.AssignedTo = assignedTo
	}
	report.UpdatedAt = time.Now()

	copied := *report
	return &copied, nil
}

func (m *mockReportStore) Withdraw(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	if report.Withdrawn {
		return nil, repository.ErrReportAlreadyWithdrawn
	}

	now := time.Now()
	report.Withdrawn = true
	report.WithdrawnAt = &now
	report.Status = models.ReportStatusWithdrawn
	report.UpdatedAt = now

	copied := *report
	return &copied, nil
}

func (m *mockReportStore) Stats(ctx context.Context) (total, resolved, pending int, err error) {
	for _, report := range m.reports {
		if report.Withdrawn {
			continue
		}
		total++
		switch report.Status {
		case models.ReportStatusResolved:
			resolved++
		case models.ReportStatusPending:
			pending++
		}
	}
	return total, resolved, pending, nil
}

func submitTestReport(t *testing.T, svc *ReportService, reporterID uuid.UUID) *models.Report {
	t.Helper()
	report, err := svc.Submit(context.Background(), reporterID, SubmitInput{
		Type:        "Фишинг",
		Description: "Получил письмо со ссылкой на поддельный сайт банка",
		Date:        "2026-08-20",
	})
	if err != nil {
		t.Fatalf("не удалось подать обращение: %v", err)
	}
	return report
}

func TestReportService_Submit_GeneratesTrackingID(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	reporterID := uuid.New()

	report := submitTestReport(t, svc, reporterID)

	pattern := regexp.MustCompile(`^CYB-\d{8}-\d{4}$`)
	if !pattern.MatchString(report.TrackingID) {
		t.Fatalf("трекинг-номер не соответствует формату: %q", report.TrackingID)
	}
	if report.Status != models.ReportStatusPending {
		t.Fatalf("новое обращение должно быть Pending, получили %q", report.Status)
	}
	if report.Priority != models.ReportPriorityMedium {
		t.Fatalf("приоритет по умолчанию должен быть Medium, получили %q", report.Priority)
	}
}

func TestReportService_Submit_Concurrent(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)

	// Параллельная подача с нескольких горутин: генерация трекинг-номера
	// не должна гоняться по общему состоянию (ловится под -race).
	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reporterID := uuid.New()
			for j := 0; j < perWorker; j++ {
				_, err := svc.Submit(context.Background(), reporterID, SubmitInput{
					Type:        "Фишинг",
					Description: "Получил письмо со ссылкой на поддельный сайт банка",
					Date:        "2026-08-20",
				})
				if err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("конкурентная подача не должна падать: %v", err)
	}
}

func TestReportService_Submit_RetriesOnTrackingCollision(t *testing.T) {
	store := newMockReportStore()
	store.duplicates = 2
	svc := NewReportService(store)

	report := submitTestReport(t, svc, uuid.New())

	if report.TrackingID == "" {
		t.Fatal("обращение должно получить трекинг-номер после ретраев")
	}
	if store.createCalls != 3 {
		t.Fatalf("ожидали 3 попытки вставки, было %d", store.createCalls)
	}
}

func TestReportService_Submit_FailsAfterMaxAttempts(t *testing.T) {
	store := newMockReportStore()
	store.duplicates = trackingIDMaxAttempts
	svc := NewReportService(store)

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{
		Type:        "Фишинг",
		Description: "Получил письмо со ссылкой на поддельный сайт банка",
		Date:        "2026-08-20",
	})
	if err == nil {
		t.Fatal("ожидали ошибку после исчерпания попыток")
	}
	if store.createCalls != trackingIDMaxAttempts {
		t.Fatalf("ожидали %d попыток вставки, было %d", trackingIDMaxAttempts, store.createCalls)
	}
}

func TestReportService_Submit_ValidationError(t *testing.T) {
	svc := NewReportService(newMockReportStore())

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{
		Type:        "",
		Description: "описание достаточно длинное для проверки",
		Date:        "2026-08-20",
	})
	if !apperror.IsValidation(err) {
		t.Fatalf("ожидали ошибку валидации, получили %v", err)
	}
}

func TestReportService_Track_NotFound(t *testing.T) {
	svc := NewReportService(newMockReportStore())

	_, err := svc.Track(context.Background(), "CYB-20260820-0000")
	if !errors.Is(err, apperror.ErrReportNotFound) {
		t.Fatalf("ожидали NOT_FOUND, получили %v", err)
	}
}

func TestReportService_Track_ReturnsPublicProjection(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	report := submitTestReport(t, svc, uuid.New())

	view, err := svc.Track(context.Background(), report.TrackingID)
	if err != nil {
		t.Fatalf("трекинг должен находить поданное обращение: %v", err)
	}
	if view.TrackingID != report.TrackingID || view.Status != models.ReportStatusPending {
		t.Fatalf("неожиданная проекция: %+v", view)
	}
}

func TestReportService_Withdraw_OwnerOnly(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	report := submitTestReport(t, svc, uuid.New())

	_, err := svc.Withdraw(context.Background(), report.ID, uuid.New())
	appErr, ok := apperror.As(err)
	if !ok || appErr.Code != apperror.ErrCodeForbidden {
		t.Fatalf("чужое обращение должно давать FORBIDDEN, получили %v", err)
	}
}

func TestReportService_Withdraw_SetsStatusAndFlag(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	reporterID := uuid.New()
	report := submitTestReport(t, svc, reporterID)

	withdrawn, err := svc.Withdraw(context.Background(), report.ID, reporterID)
	if err != nil {
		t.Fatalf("владелец должен иметь право отозвать обращение: %v", err)
	}
	if !withdrawn.Withdrawn || withdrawn.Status != models.ReportStatusWithdrawn {
		t.Fatalf("после отзыва ожидали withdrawn=true и статус Withdrawn: %+v", withdrawn)
	}
	if withdrawn.WithdrawnAt == nil {
		t.Fatal("после отзыва должна быть заполнена отметка времени")
	}
}

func TestReportService_Withdraw_AlreadyWithdrawn(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	reporterID := uuid.New()
	report := submitTestReport(t, svc, reporterID)

	if _, err := svc.Withdraw(context.Background(), report.ID, reporterID); err != nil {
		t.Fatalf("первый отзыв должен пройти: %v", err)
	}

	_, err := svc.Withdraw(context.Background(), report.ID, reporterID)
	if !errors.Is(err, apperror.ErrAlreadyWithdrawn) {
		t.Fatalf("повторный отзыв должен давать ALREADY_WITHDRAWN, получили %v", err)
	}
}

func TestReportService_UpdateStatus_RejectsEmptyInput(t *testing.T) {
	svc := NewReportService(newMockReportStore())

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusInput{})
	if !apperror.IsValidation(err) {
		t.Fatalf("пустое обновление должно отклоняться, получили %v", err)
	}
}

func TestReportService_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewReportService(newMockReportStore())

	bad := "Escalated"
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), UpdateStatusInput{Status: &bad})
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестный статус должен отклоняться, получили %v", err)
	}
}

func TestReportService_UpdateStatus_DoesNotTouchWithdrawn(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	reporterID := uuid.New()
	report := submitTestReport(t, svc, reporterID)

	if _, err := svc.Withdraw(context.Background(), report.ID, reporterID); err != nil {
		t.Fatalf("отзыв должен пройти: %v", err)
	}

	// Админское обновление не проверяет флаг отзыва: статус меняется,
	// withdrawn остаётся true, поля расходятся.
	resolved := models.ReportStatusResolved
	updated, err := svc.UpdateStatus(context.Background(), report.ID, UpdateStatusInput{Status: &resolved})
	if err != nil {
		t.Fatalf("обновление отозванного обращения должно проходить: %v", err)
	}
	if updated.Status != models.ReportStatusResolved {
		t.Fatalf("статус должен смениться на Resolved, получили %q", updated.Status)
	}
	if !updated.Withdrawn {
		t.Fatal("флаг withdrawn не должен сбрасываться админским обновлением")
	}
}

func TestReportService_ListAll_RejectsUnknownStatusFilter(t *testing.T) {
	svc := NewReportService(newMockReportStore())

	bad := "Escalated"
	_, err := svc.ListAll(context.Background(), &bad)
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестный фильтр статуса должен отклоняться, получили %v", err)
	}
}

func TestReportService_Stats_ExcludesWithdrawn(t *testing.T) {
	store := newMockReportStore()
	svc := NewReportService(store)
	reporterID := uuid.New()

	first := submitTestReport(t, svc, reporterID)
	submitTestReport(t, svc, reporterID)

	if _, err := svc.Withdraw(context.Background(), first.ID, reporterID); err != nil {
		t.Fatalf("отзыв должен пройти: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("статистика должна считаться: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Fatalf("отозванные обращения не должны попадать в агрегаты: %+v", stats)
	}
	if stats.AvgResponseHours != 48 {
		t.Fatalf("среднее время ответа пока константа 48, получили %v", stats.AvgResponseHours)
	}
}
