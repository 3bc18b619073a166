package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/config"
	"github.com/ignatzorin/cyberreport-backend/internal/http/handlers"
	"github.com/ignatzorin/cyberreport-backend/internal/http/middleware"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
)

// SetupRouter собирает маршруты API.
//
// Поверхности:
//   - публичные: health, трекинг по номеру, статистика, логин/регистрация;
//   - общие (заявитель или админ): профиль, выход;
//   - заявительские: подача, свои обращения, отзыв;
//   - админские: список всех обращений, смена статуса.
func SetupRouter(
	cfg *config.Config,
	auth *service.AuthService,
	reporterHandler *handlers.ReporterHandler,
	adminHandler *handlers.AdminHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.StaticFS("/uploads", http.Dir(cfg.UploadsPath))

	api := r.Group("/api")

	api.GET("/health", healthHandler.Health)

	if seedHandler != nil && cfg.Env != "production" {
		api.POST("/seed", seedHandler.Seed)
	}

	sharedAuth := middleware.AuthMiddleware(auth, service.ResolveShared)
	adminAuth := middleware.AdminMiddleware(auth)
	loginRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	reporters := api.Group("/reporters")
	{
		reporters.POST("/register", loginRateLimit, reporterHandler.Register)
		reporters.POST("/login", loginRateLimit, reporterHandler.Login)
		reporters.POST("/logout", reporterHandler.Logout)
		reporters.GET("/profile", sharedAuth, reporterHandler.GetProfile)
		reporters.PUT("/profile", sharedAuth, reporterHandler.UpdateProfile)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/login", loginRateLimit, adminHandler.Login)
		admin.GET("/profile", adminAuth, adminHandler.GetProfile)
		admin.PUT("/profile", adminAuth, adminHandler.UpdateProfile)
	}

	reports := api.Group("/reports")
	{
		// Публичные
		reports.GET("/track/:trackingId", reportHandler.Track)
		reports.GET("/stats", reportHandler.Stats)

		// Заявительские
		reports.POST("/submit-authenticated", sharedAuth, reportHandler.Submit)
		reports.GET("/my-reports", sharedAuth, reportHandler.MyReports)
		reports.PUT("/:id/withdraw", sharedAuth, reportHandler.Withdraw)

		// Админские
		reports.GET("/all", adminAuth, reportHandler.ListAll)
		reports.PUT("/:id/status", adminAuth, reportHandler.UpdateStatus)
	}

	return r
}
