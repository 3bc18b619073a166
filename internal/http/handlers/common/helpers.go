package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/cyberreport-backend/internal/dto"
	"github.com/ignatzorin/cyberreport-backend/internal/http/middleware"
	"github.com/ignatzorin/cyberreport-backend/internal/models"
)

var (
	// ErrIdentityNotFound возвращается, когда identity отсутствует в контексте.
	ErrIdentityNotFound = errors.New("сессия не найдена в контексте")

	// ErrInvalidUUID возвращается при ошибке парсинга UUID.
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentIdentity достаёт identity, положенный auth middleware.
func CurrentIdentity(c *gin.Context) (*models.Identity, error) {
	raw, exists := c.Get(middleware.ContextIdentityKey)
	if !exists {
		return nil, ErrIdentityNotFound
	}

	identity, ok := raw.(*models.Identity)
	if !ok || identity == nil {
		return nil, ErrIdentityNotFound
	}

	return identity, nil
}

// ParseUUIDParam парсит UUID из URL параметра.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// RespondError отправляет стандартизированный ответ с ошибкой.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondSuccess отправляет стандартизированный успешный ответ.
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, dto.SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondUnauthorized отправляет 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondBadRequest отправляет 400.
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}
