package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
	"github.com/ignatzorin/cyberreport-backend/internal/storage"
)

// AdminHandler обслуживает вход и профиль администраторов.
// Регистрации администраторов нет: учётка заводится сидом.
type AdminHandler struct {
	auth          *service.AuthService
	storage       *storage.FileStorage
	cookies       *SessionCookies
	maxPhotoBytes int64
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(auth *service.AuthService, store *storage.FileStorage, cookies *SessionCookies, maxPhotoBytes int64) *AdminHandler {
	return &AdminHandler{
		auth:          auth,
		storage:       store,
		cookies:       cookies,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email и пароль обязательны")
		return
	}

	result, err := h.auth.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.cookies.Set(c, result.Token)

	c.JSON(http.StatusOK, gin.H{
		"message": "вход выполнен",
		"user":    result.Identity,
	})
}

// GetProfile обрабатывает GET /api/admin/profile. Только для администраторов.
func (h *AdminHandler) GetProfile(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// UpdateProfile обрабатывает PUT /api/admin/profile.
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var in service.UpdateProfileInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("phone"); ok {
		in.Phone = &v
	}
	if v, ok := c.GetPostForm("address"); ok {
		in.Address = &v
	}

	if file, err := c.FormFile("profilePhoto"); err == nil {
		path, err := saveUpload(c, h.storage, file, storage.KindProfile, photoMimeTypes, h.maxPhotoBytes)
		if err != nil {
			c.Error(err)
			return
		}
		in.ProfilePhoto = &path
	}

	oldPhoto := identity.ProfilePhoto

	updated, err := h.auth.UpdateProfile(c.Request.Context(), identity.ID, identity.Role, in)
	if err != nil {
		c.Error(err)
		return
	}

	// Старое фото больше никем не ссылается, подчищаем best-effort
	if in.ProfilePhoto != nil && oldPhoto != "" && oldPhoto != *in.ProfilePhoto {
		if err := h.storage.Delete(c.Request.Context(), oldPhoto); err != nil && logger.Log != nil {
			logger.Log.WithField("path", oldPhoto).Warnf("не удалось удалить старое фото профиля: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "профиль обновлён",
		"user":    updated,
	})
}
