package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cyberreport-backend/internal/dto"
	"github.com/ignatzorin/cyberreport-backend/internal/logger"
	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// AppError переводится в HTTP статус и код из таксономии, всё остальное
// маскируется как внутренняя ошибка сервера.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		appErr, ok := apperror.As(err)
		if !ok {
			appErr = apperror.Wrap(err, apperror.ErrCodeInternal, "внутренняя ошибка сервера")
		}

		entry := logger.Log.WithFields(logrus.Fields{
			"code":   string(appErr.Code),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		switch {
		case appErr.HTTPStatus >= http.StatusInternalServerError:
			entry.WithField("error", err.Error()).Error("Request failed")
		case apperror.IsValidation(err):
			// Ошибки валидации — шум клиентского ввода, не повод для Warn
			entry.Info("Request rejected")
		default:
			entry.Warn("Request rejected")
		}

		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{Error: appErr.Message})
	}
}
