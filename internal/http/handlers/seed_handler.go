package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
)

// SeedHandler создаёт дефолтную админскую учётку. Маршрут регистрируется
// только вне production.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler создаёт хэндлер.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Seed обрабатывает POST /api/seed.
func (h *SeedHandler) Seed(c *gin.Context) {
	if err := h.seed.SeedAdmin(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "администратор создан или уже существует", nil)
}
