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

// ErrAdminNotFound возвращается, когда запись администратора не найдена.
var ErrAdminNotFound = errors.New("admin not found")

// AdminRepository отвечает за работу с таблицей admins.
// Пространство администраторов намеренно отделено от заявителей.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository создаёт экземпляр репозитория.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create создаёт администратора. Используется только сидом.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (email, password_hash, name, phone, address, profile_photo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		admin.Email, admin.PasswordHash, admin.Name,
		admin.Phone, admin.Address, admin.ProfilePhoto,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("admin repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает администратора по email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	query := `
		SELECT id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &admin, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("admin repository: get by email %w", err)
	}

	return &admin, nil
}

// GetByID возвращает администратора по идентификатору.
func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	query := `
		SELECT id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("admin repository: get by id %w", err)
	}

	return &admin, nil
}

// UpdateProfile применяет частичное обновление профиля администратора.
func (r *AdminRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address, profilePhoto *string) (*models.Admin, error) {
	var admin models.Admin
	query := `
		UPDATE admins
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			profile_photo = COALESCE($5, profile_photo),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, name, phone, address, profile_photo, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &admin, query, id, name, phone, address, profilePhoto); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("admin repository: update profile %w", err)
	}

	return &admin, nil
}

// Count возвращает количество администраторов (используется сидом для идемпотентности).
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("admin repository: count %w", err)
	}
	return count, nil
}
