package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
	"github.com/ignatzorin/cyberreport-backend/internal/storage"
)

// ReporterHandler обслуживает регистрацию, вход и профиль заявителей.
type ReporterHandler struct {
	auth          *service.AuthService
	storage       *storage.FileStorage
	cookies       *SessionCookies
	maxPhotoBytes int64
}

// NewReporterHandler создаёт хэндлер.
func NewReporterHandler(auth *service.AuthService, store *storage.FileStorage, cookies *SessionCookies, maxPhotoBytes int64) *ReporterHandler {
	return &ReporterHandler{
		auth:          auth,
		storage:       store,
		cookies:       cookies,
		maxPhotoBytes: maxPhotoBytes,
	}
}

// Register обрабатывает POST /api/reporters/register.
// Принимает multipart форму с полями профиля и опциональным фото.
func (h *ReporterHandler) Register(c *gin.Context) {
	in := service.RegisterInput{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Phone:    c.PostForm("phone"),
		Address:  c.PostForm("address"),
	}

	if file, err := c.FormFile("profilePhoto"); err == nil {
		path, err := saveUpload(c, h.storage, file, storage.KindProfile, photoMimeTypes, h.maxPhotoBytes)
		if err != nil {
			c.Error(err)
			return
		}
		in.ProfilePhoto = path
	}

	result, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}

	// Авто-логин: сессия выдаётся сразу после регистрации
	h.cookies.Set(c, result.Token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "регистрация выполнена",
		"user":    result.Identity,
	})
}

// Login обрабатывает POST /api/reporters/login.
func (h *ReporterHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email и пароль обязательны")
		return
	}

	result, err := h.auth.LoginReporter(c.Request.Context(), req.Email, req.Password)
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

// Logout обрабатывает POST /api/reporters/logout.
// Всегда отвечает 200: даже без активной сессии cookie перезаписывается.
func (h *ReporterHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	common.RespondSuccess(c, http.StatusOK, "выход выполнен", nil)
}

// GetProfile обрабатывает GET /api/reporters/profile.
// Эндпоинт общий: доступен и заявителям, и администраторам.
func (h *ReporterHandler) GetProfile(c *gin.Context) {
	identity, err := common.CurrentIdentity(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// UpdateProfile обрабатывает PUT /api/reporters/profile.
// Меняются только имя, телефон, адрес и фото. Email и пароль не трогаются.
func (h *ReporterHandler) UpdateProfile(c *gin.Context) {
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
