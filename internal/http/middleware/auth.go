package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextIdentityKey = "identity"

	// SessionCookieName — имя cookie с токеном сессии.
	SessionCookieName = "token"
)

// AuthMiddleware резолвит сессию из cookie и кладёт identity в контекст.
// При невалидном токене cookie сбрасывается, чтобы клиент не слал его повторно.
func AuthMiddleware(auth *service.AuthService, mode service.ResolveMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		identity, err := auth.ResolveSession(c.Request.Context(), raw, mode)
		if err != nil {
			if apperror.IsUnauthenticated(err) {
				clearSessionCookie(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "сессия недействительна, войдите заново"})
				return
			}
			if errCode(err) == apperror.ErrCodeForbidden {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// AdminMiddleware — строгий режим: сессия должна принадлежать администратору.
func AdminMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return AuthMiddleware(auth, service.ResolveAdmin)
}

func errCode(err error) apperror.ErrorCode {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Code
	}
	return apperror.ErrCodeInternal
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
