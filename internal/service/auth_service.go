package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/cyberreport-backend/internal/models"
	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
	"github.com/ignatzorin/cyberreport-backend/internal/validation"
)

// ReporterStore описывает зависимости AuthService от хранилища заявителей.
type ReporterStore interface {
	Create(ctx context.Context, reporter *models.Reporter) error
	GetByEmail(ctx context.Context, email string) (*models.Reporter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reporter, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address, profilePhoto *string) (*models.Reporter, error)
}

// AdminStore описывает зависимости AuthService от хранилища администраторов.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address, profilePhoto *string) (*models.Admin, error)
}

// ResolveMode задаёт, против какого пространства идентичностей резолвится сессия.
type ResolveMode int

const (
	// ResolveShared — общие поверхности: сначала заявители, затем фолбэк в
	// администраторов (часть эндпоинтов доступна обеим ролям).
	ResolveShared ResolveMode = iota
	// ResolveAdmin — строго административные поверхности.
	ResolveAdmin
)

// AuthService инкапсулирует регистрацию, аутентификацию и резолв сессий.
type AuthService struct {
	reporters ReporterStore
	admins    AdminStore
	tokens    *TokenManager
}

// RegisterInput содержит данные заявителя при регистрации.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	Address      string
	ProfilePhoto string
}

// UpdateProfileInput содержит частичное обновление профиля.
// Nil-поле означает «не трогать». Email, пароль и роль через профиль не меняются.
type UpdateProfileInput struct {
	Name         *string
	Phone        *string
	Address      *string
	ProfilePhoto *string
}

// AuthResult возвращает итог регистрации или входа.
type AuthResult struct {
	Identity *models.Identity
	Token    string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(reporters ReporterStore, admins AdminStore, tokens *TokenManager) *AuthService {
	return &AuthService{
		reporters: reporters,
		admins:    admins,
		tokens:    tokens,
	}
}

// Register создаёт нового заявителя и сразу выдаёт сессию (авто-логин).
// Администраторы так не заводятся — только сидом.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAddress(in.Address); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	reporter := &models.Reporter{
		Email:        validation.NormalizeEmail(in.Email),
		PasswordHash: string(passHash),
		Name:         in.Name,
		Phone:        in.Phone,
		Address:      in.Address,
		ProfilePhoto: in.ProfilePhoto,
	}

	if err := s.reporters.Create(ctx, reporter); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	token, _, err := s.tokens.Generate(reporter.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity: models.IdentityFromReporter(reporter),
		Token:    token,
	}, nil
}

// LoginReporter проверяет учётные данные заявителя и выдаёт сессию.
// «Нет такого email» и «неверный пароль» наружу не различаются.
func (s *AuthService) LoginReporter(ctx context.Context, email, password string) (*AuthResult, error) {
	reporter, err := s.reporters.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(reporter.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Generate(reporter.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity: models.IdentityFromReporter(reporter),
		Token:    token,
	}, nil
}

// LoginAdmin проверяет учётные данные администратора и выдаёт сессию.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*AuthResult, error) {
	admin, err := s.admins.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Generate(admin.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity: models.IdentityFromAdmin(admin),
		Token:    token,
	}, nil
}

// ResolveSession превращает сырой токен в помеченную ролью идентичность.
// Токен валиден, только если подпись и срок в порядке, а subject всё ещё
// существует в резолвящемся пространстве.
func (s *AuthService) ResolveSession(ctx context.Context, rawToken string, mode ResolveMode) (*models.Identity, error) {
	if rawToken == "" {
		return nil, apperror.ErrUnauthenticated
	}

	identityID, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthenticated, "сессия недействительна, войдите заново")
	}

	// UNAUTHENTICATED — только про исчезнувший subject. Сбой хранилища
	// остаётся внутренней ошибкой, иначе при недоступной базе middleware
	// сотрёт валидную куку и разлогинит всех.
	if mode == ResolveAdmin {
		admin, err := s.admins.GetByID(ctx, identityID)
		if err != nil {
			if errors.Is(err, repository.ErrAdminNotFound) {
				return nil, apperror.ErrUnauthenticated
			}
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		}
		return models.IdentityFromAdmin(admin), nil
	}

	reporter, err := s.reporters.GetByID(ctx, identityID)
	if err == nil {
		return models.IdentityFromReporter(reporter), nil
	}
	if !errors.Is(err, repository.ErrReporterNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
	}

	admin, err := s.admins.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, apperror.ErrUnauthenticated
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
	}

	return models.IdentityFromAdmin(admin), nil
}

// GetProfile возвращает профиль идентичности без чувствительных полей.
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID, role string) (*models.Identity, error) {
	switch role {
	case models.RoleAdmin:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.ErrAdminNotFound
		}
		return models.IdentityFromAdmin(admin), nil
	default:
		reporter, err := s.reporters.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.ErrReporterNotFound
		}
		return models.IdentityFromReporter(reporter), nil
	}
}

// UpdateProfile применяет частичное обновление профиля. Исчезновение
// идентичности между резолвом сессии и обновлением — NotFound, без ретраев.
func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, role string, in UpdateProfileInput) (*models.Identity, error) {
	if in.Phone != nil {
		if err := validation.ValidatePhone(*in.Phone); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Address != nil {
		if err := validation.ValidateAddress(*in.Address); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	switch role {
	case models.RoleAdmin:
		admin, err := s.admins.UpdateProfile(ctx, id, in.Name, in.Phone, in.Address, in.ProfilePhoto)
		if err != nil {
			if errors.Is(err, repository.ErrAdminNotFound) {
				return nil, apperror.ErrAdminNotFound
			}
			return nil, err
		}
		return models.IdentityFromAdmin(admin), nil
	default:
		reporter, err := s.reporters.UpdateProfile(ctx, id, in.Name, in.Phone, in.Address, in.ProfilePhoto)
		if err != nil {
			if errors.Is(err, repository.ErrReporterNotFound) {
				return nil, apperror.ErrReporterNotFound
			}
			return nil, err
		}
		return models.IdentityFromReporter(reporter), nil
	}
}
