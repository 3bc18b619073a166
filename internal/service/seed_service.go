package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
)

// Дефолтный административный аккаунт. Регистрации администраторов нет,
// единственный путь завести оператора — этот сид.
const (
	seedAdminEmail    = "admin@cybersafe.com"
	seedAdminPassword = "admin123"
)

// AdminSeedStore описывает зависимости сида от хранилища администраторов.
type AdminSeedStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int, error)
}

// SeedService заполняет базу стартовыми данными.
type SeedService struct {
	admins AdminSeedStore
}

// NewSeedService создаёт сервис сидов.
func NewSeedService(admins AdminSeedStore) *SeedService {
	return &SeedService{admins: admins}
}

// SeedAdmin заводит дефолтного администратора, если администраторов ещё нет.
// Повторный вызов — no-op.
func (s *SeedService) SeedAdmin(ctx context.Context) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed service: не удалось захешировать пароль: %w", err)
	}

	admin := &models.Admin{
		Email:        seedAdminEmail,
		PasswordHash: string(passHash),
		Name:         "Admin",
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		// Гонка двух сидов — нормальная ситуация, администратор уже есть.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return err
	}

	if logger.Log != nil {
		logger.Log.WithField("email", seedAdminEmail).Info("seed: создан дефолтный администратор")
	}

	return nil
}
