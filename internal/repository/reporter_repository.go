package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/cyberreport-backend/internal/models"
)

// ErrReporterNotFound возвращается, когда запись заявителя не найдена.
var ErrReporterNotFound = errors.New("reporter not found")

// ErrDuplicateEmail возвращается при нарушении уникальности email.
var ErrDuplicateEmail = errors.New("email already registered")

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального ограничения.
const uniqueViolation = "23505"

// isUniqueViolation определяет, является ли ошибка нарушением уникальности.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ReporterRepository отвечает за работу с таблицей reporters.
type ReporterRepository struct {
	db *sqlx.DB
}

// NewReporterRepository создаёт экземпляр репозитория.
func NewReporterRepository(db *sqlx.DB) *ReporterRepository {
	return &ReporterRepository{db: db}
}

// Create создаёт нового заявителя.
func (r *ReporterRepository) Create(ctx context.Context, reporter *models.Reporter) error {
	query := `
		INSERT INTO reporters (email, password_hash, name, phone, address, profile_photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		reporter.Email, reporter.PasswordHash, reporter.Name,
		reporter.Phone, reporter.Address, reporter.ProfilePhoto,
	).Scan(&reporter.ID, &reporter.CreatedAt, &reporter.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("reporter repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает заявителя по email (email хранится в нижнем регистре).
func (r *ReporterRepository) GetByEmail(ctx context.Context, email string) (*models.Reporter, error) {
	var reporter models.Reporter
	query := `
		SELECT id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
		FROM reporters
		WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &reporter, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReporterNotFound
		}
		return nil, fmt.Errorf("reporter repository: get by email %w", err)
	}

	return &reporter, nil
}

// GetByID возвращает заявителя по идентификатору.
func (r *ReporterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reporter, error) {
	var reporter models.Reporter
	query := `
		SELECT id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
		FROM reporters
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &reporter, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReporterNotFound
		}
		return nil, fmt.Errorf("reporter repository: get by id %w", err)
	}

	return &reporter, nil
}

// UpdateProfile применяет частичное обновление профиля. Nil-поля не трогаются;
// email, пароль и роль через этот путь недостижимы.
func (r *ReporterRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address, profilePhoto *string) (*models.Reporter, error) {
	var reporter models.Reporter
	query := `
		UPDATE reporters
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			profile_photo = COALESCE($5, profile_photo),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &reporter, query, id, name, phone, address, profilePhoto); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReporterNotFound
		}
		return nil, fmt.Errorf("reporter repository: update profile %w", err)
	}

	return &reporter, nil
}
