package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/cyberreport-backend/internal/config"
	"github.com/ignatzorin/cyberreport-backend/internal/db"
	httpHandlers "github.com/ignatzorin/cyberreport-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/cyberreport-backend/internal/http/router"
	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/repository"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
	"github.com/ignatzorin/cyberreport-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug", cfg.Env)
	} else {
		logger.Init("info", cfg.Env)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.UploadsPath)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	reporterRepo := repository.NewReporterRepository(dbConn)
	adminRepo := repository.NewAdminRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(reporterRepo, adminRepo, tokenManager)
	reportService := service.NewReportService(reportRepo)
	seedService := service.NewSeedService(adminRepo)

	// Вне production админ заводится автоматически при старте.
	if cfg.Env != "production" {
		if err := seedService.SeedAdmin(ctx); err != nil {
			log.Printf("main: не удалось создать дефолтного администратора: %v", err)
		}
	}

	sessionCookies := httpHandlers.NewSessionCookies(cfg.TokenTTL, cfg.Env == "production")
	maxPhotoBytes := cfg.MaxPhotoUploadMB << 20
	maxEvidenceBytes := cfg.MaxEvidenceUploadMB << 20

	// HTTP хэндлеры.
	reporterHandler := httpHandlers.NewReporterHandler(authService, fileStorage, sessionCookies, maxPhotoBytes)
	adminHandler := httpHandlers.NewAdminHandler(authService, fileStorage, sessionCookies, maxPhotoBytes)
	reportHandler := httpHandlers.NewReportHandler(reportService, fileStorage, maxEvidenceBytes)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authService, reporterHandler, adminHandler, reportHandler, healthHandler, seedHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
