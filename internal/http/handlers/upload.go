package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/cyberreport-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cyberreport-backend/internal/storage"
)

// Разрешённые типы для фото профиля.
var photoMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые типы для доказательств: изображения, видео, аудио и PDF.
var evidenceMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/x-msvideo": true,
	"video/quicktime": true,
	"audio/mpeg":      true,
	"audio/x-wav":     true,
	"audio/ogg":       true,
	"application/pdf": true,
}

// saveUpload валидирует загруженный файл по магическим байтам и сохраняет
// его в хранилище. Возвращает относительный путь файла.
func saveUpload(c *gin.Context, store *storage.FileStorage, file *multipart.FileHeader, kind string, allowed map[string]bool, maxBytes int64) (string, error) {
	if file.Size == 0 {
		return "", apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым")
	}
	if file.Size > maxBytes {
		return "", apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("размер файла превышает лимит %d МБ", maxBytes/(1<<20)))
	}

	src, err := file.Open()
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось открыть файл")
	}
	defer src.Close()

	// Читаем первые 512 байт для проверки магических байтов
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл")
	}

	// Проверяем реальный тип файла, расширению не доверяем
	matched, err := filetype.Match(buffer[:n])
	if err != nil || matched == filetype.Unknown {
		return "", apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла")
	}
	if !allowed[matched.MIME.Value] {
		return "", apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неподдерживаемый тип файла (%s)", matched.MIME.Value))
	}

	// Сбрасываем позицию файла для сохранения
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сбросить позицию файла")
	}

	relativePath, _, err := store.Save(c.Request.Context(), kind, file.Filename, src, maxBytes)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
	}

	return relativePath, nil
}
