package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/cyberreport-backend/internal/http/middleware"
)

// SessionCookies пишет и сбрасывает cookie сессии по единым правилам:
// HttpOnly, SameSite=Lax, Path=/. Secure включается в production.
type SessionCookies struct {
	ttl    time.Duration
	secure bool
}

// NewSessionCookies создаёт помощник для работы с cookie сессии.
func NewSessionCookies(ttl time.Duration, secure bool) *SessionCookies {
	return &SessionCookies{ttl: ttl, secure: secure}
}

// Set устанавливает cookie с токеном сессии.
func (s *SessionCookies) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
}

// Clear перезаписывает cookie просроченным значением.
func (s *SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", s.secure, true)
}
