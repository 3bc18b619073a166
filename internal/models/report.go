package models

import (
	"time"

	"github.com/google/uuid"
)

// Report описывает обращение о киберпреступлении.
// Поля withdrawn и status хранятся раздельно и могут разойтись: админское
// обновление статуса не проверяет флаг отзыва (известная особенность).
type Report struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TrackingID  string     `db:"tracking_id" json:"tracking_id"`
	ReporterID  uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	Type        string     `db:"type" json:"type"`
	Description string     `db:"description" json:"description"`
	Date        time.Time  `db:"date" json:"date"`
	Evidence    *string    `db:"evidence" json:"evidence,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	AssignedTo  *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	Withdrawn   bool       `db:"withdrawn" json:"withdrawn"`
	WithdrawnAt *time.Time `db:"withdrawn_at" json:"withdrawn_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ReportWithReporter — строка админского списка: обращение плюс
// контактные поля заявителя.
type ReportWithReporter struct {
	Report
	ReporterName  string `db:"reporter_name" json:"reporter_name"`
	ReporterEmail string `db:"reporter_email" json:"reporter_email"`
	ReporterPhone string `db:"reporter_phone" json:"reporter_phone"`
}

// ReportStats — агрегаты для дашборда. Отозванные обращения не попадают
// ни в одну корзину.
type ReportStats struct {
	Total            int     `json:"total"`
	Resolved         int     `json:"resolved"`
	Pending          int     `json:"pending"`
	AvgResponseHours float64 `json:"avg_response_hours"`
}
