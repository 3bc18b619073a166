package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "unit-test-secret-with-enough-length")
	t.Setenv("APP_ENV", "development")
}

func TestLoad_FailsWithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")

	if _, err := Load(); err == nil {
		t.Fatal("запуск без JWT_SECRET должен падать в любом окружении")
	}
}

func TestLoad_FailsOnShortSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("короткий JWT_SECRET в production должен отклоняться")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("конфигурация должна загружаться: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("порт по умолчанию должен быть 8080, получили %q", cfg.HTTPPort)
	}
	if cfg.TokenTTL != 720*time.Hour {
		t.Errorf("срок сессии по умолчанию 30 суток, получили %v", cfg.TokenTTL)
	}
	if cfg.MaxPhotoUploadMB != 5 {
		t.Errorf("лимит фото по умолчанию 5 МБ, получили %d", cfg.MaxPhotoUploadMB)
	}
	if cfg.MaxEvidenceUploadMB != 10 {
		t.Errorf("лимит доказательств по умолчанию 10 МБ, получили %d", cfg.MaxEvidenceUploadMB)
	}
}

func TestLoad_RejectsNonPositiveRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RATE_LIMIT_LIMIT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("нулевой RATE_LIMIT_LIMIT должен отклоняться при загрузке")
	}

	t.Setenv("RATE_LIMIT_LIMIT", "10")
	t.Setenv("RATE_LIMIT_PERIOD", "-1m")

	if _, err := Load(); err == nil {
		t.Fatal("отрицательный RATE_LIMIT_PERIOD должен отклоняться при загрузке")
	}
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db.internal")
	t.Setenv("POSTGRESQL_PORT", "5433")
	t.Setenv("POSTGRESQL_USER", "cyber")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss word")
	t.Setenv("POSTGRESQL_DBNAME", "cyberreport")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("конфигурация должна загружаться: %v", err)
	}

	if !strings.Contains(cfg.DatabaseURL, "db.internal:5433") {
		t.Errorf("DSN должен собираться из частей, получили %q", cfg.DatabaseURL)
	}
	if strings.Contains(cfg.DatabaseURL, "p@ss word") {
		t.Errorf("пароль должен экранироваться в DSN: %q", cfg.DatabaseURL)
	}
}
