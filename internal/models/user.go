package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли идентичностей. Пространства хранятся раздельно (таблицы reporters и
// admins), роль присваивается при резолве сессии.
const (
	RoleReporter = "reporter"
	RoleAdmin    = "admin"
)

// Reporter описывает заявителя — гражданина, подающего обращения.
type Reporter struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	ProfilePhoto string    `db:"profile_photo" json:"profile_photo"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Admin описывает оператора панели триажа. Заводится только сидом.
type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	Address      string    `db:"address" json:"address"`
	ProfilePhoto string    `db:"profile_photo" json:"profile_photo"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Identity — результат резолва сессии: кто пришёл и в какой роли.
// Хэндлеры ветвятся по Role, а не по наличию/отсутствию полей.
type Identity struct {
	ID           uuid.UUID `json:"id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	ProfilePhoto string    `json:"profile_photo"`
}

// IdentityFromReporter помечает заявителя ролью reporter.
func IdentityFromReporter(r *Reporter) *Identity {
	return &Identity{
		ID:           r.ID,
		Role:         RoleReporter,
		Email:        r.Email,
		Name:         r.Name,
		Phone:        r.Phone,
		Address:      r.Address,
		ProfilePhoto: r.ProfilePhoto,
	}
}

// IdentityFromAdmin помечает оператора ролью admin.
func IdentityFromAdmin(a *Admin) *Identity {
	return &Identity{
		ID:           a.ID,
		Role:         RoleAdmin,
		Email:        a.Email,
		Name:         a.Name,
		Phone:        a.Phone,
		Address:      a.Address,
		ProfilePhoto: a.ProfilePhoto,
	}
}
