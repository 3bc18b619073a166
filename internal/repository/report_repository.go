package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cyberreport-backend/internal/models"
)

// ErrReportNotFound возвращается, когда обращение не найдено.
var ErrReportNotFound = errors.New("report not found")

// ErrDuplicateTrackingID возвращается при коллизии трекинг-номера.
// Генерация вероятностная, вызывающий обязан повторить вставку с новым номером.
var ErrDuplicateTrackingID = errors.New("tracking id already exists")

// ErrReportAlreadyWithdrawn возвращается, когда условный UPDATE отзыва не
// нашёл неотозванной строки.
var ErrReportAlreadyWithdrawn = errors.New("report already withdrawn")

const reportColumns = `id, tracking_id, reporter_id, type, description, date, evidence,
		status, priority, assigned_to, withdrawn, withdrawn_at, created_at, updated_at`

// ReportRepository отвечает за работу с таблицей reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create вставляет новое обращение. Уникальность tracking_id обеспечивает
// ограничение в базе, предварительной проверки нет.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (tracking_id, reporter_id, type, description, date, evidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, priority, withdrawn, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		report.TrackingID, report.ReporterID, report.Type,
		report.Description, report.Date, report.Evidence,
	).Scan(
		&report.ID, &report.Status, &report.Priority,
		&report.Withdrawn, &report.CreatedAt, &report.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTrackingID
		}
		return fmt.Errorf("report repository: create %w", err)
	}

	return nil
}

// GetByID возвращает обращение по внутреннему идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}

	return &report, nil
}

// GetByTrackingID возвращает обращение по публичному трекинг-номеру.
func (r *ReportRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.Report, error) {
	var report models.Report
	query := `SELECT ` + reportColumns + ` FROM reports WHERE tracking_id = $1`
	if err := r.db.GetContext(ctx, &report, query, trackingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by tracking id %w", err)
	}

	return &report, nil
}

// ListByReporter возвращает обращения заявителя, новые первыми.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	var reports []models.Report
	query := `SELECT ` + reportColumns + ` FROM reports WHERE reporter_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &reports, query, reporterID); err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}

	return reports, nil
}

// ListAll возвращает все обращения с контактами заявителя, новые первыми.
// statusFilter != nil сужает выборку до одного статуса.
func (r *ReportRepository) ListAll(ctx context.Context, statusFilter *string) ([]models.ReportWithReporter, error) {
	query := `
		SELECT r.id, r.tracking_id, r.reporter_id, r.type, r.description, r.date, r.evidence,
			r.status, r.priority, r.assigned_to, r.withdrawn, r.withdrawn_at, r.created_at, r.updated_at,
			rep.name AS reporter_name, rep.email AS reporter_email, rep.phone AS reporter_phone
		FROM reports r
		INNER JOIN reporters rep ON rep.id = r.reporter_id
	`

	var reports []models.ReportWithReporter
	var err error
	if statusFilter != nil {
		query += ` WHERE r.status = $1 ORDER BY r.created_at DESC`
		err = r.db.SelectContext(ctx, &reports, query, *statusFilter)
	} else {
		query += ` ORDER BY r.created_at DESC`
		err = r.db.SelectContext(ctx, &reports, query)
	}
	if err != nil {
		return nil, fmt.Errorf("report repository: list all %w", err)
	}

	return reports, nil
}

// UpdateFields применяет частичное админское обновление одним UPDATE.
// Nil-поля не трогаются. Флаг withdrawn намеренно не проверяется: политика
// переходов свободная, статус и флаг отзыва могут разойтись.
func (r *ReportRepository) UpdateFields(ctx context.Context, id uuid.UUID, status, priority, assignedTo *string) (*models.Report, error) {
	var report models.Report
	query := `
		UPDATE reports
		SET status = COALESCE($2, status),
			priority = COALESCE($3, priority),
			assigned_to = COALESCE($4, assigned_to),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reportColumns + `
	`
	if err := r.db.GetContext(ctx, &report, query, id, status, priority, assignedTo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: update fields %w", err)
	}

	return &report, nil
}

// Withdraw помечает обращение отозванным одним условным UPDATE: флаг,
// отметка времени и статус меняются атомарно, повторный отзыв не проходит.
func (r *ReportRepository) Withdraw(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	query := `
		UPDATE reports
		SET withdrawn = TRUE,
			withdrawn_at = NOW(),
			status = $2,
			updated_at = NOW()
		WHERE id = $1 AND withdrawn = FALSE
		RETURNING ` + reportColumns + `
	`
	if err := r.db.GetContext(ctx, &report, query, id, models.ReportStatusWithdrawn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportAlreadyWithdrawn
		}
		return nil, fmt.Errorf("report repository: withdraw %w", err)
	}

	return &report, nil
}

// Stats считает агрегаты дашборда. Отозванные обращения исключены из всех корзин.
func (r *ReportRepository) Stats(ctx context.Context) (total, resolved, pending int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT withdrawn) AS total,
			COUNT(*) FILTER (WHERE NOT withdrawn AND status = $1) AS resolved,
			COUNT(*) FILTER (WHERE NOT withdrawn AND status = $2) AS pending
		FROM reports
	`
	if err = r.db.QueryRowxContext(ctx, query, models.ReportStatusResolved, models.ReportStatusPending).
		Scan(&total, &resolved, &pending); err != nil {
		return 0, 0, 0, fmt.Errorf("report repository: stats %w", err)
	}

	return total, resolved, pending, nil
}
