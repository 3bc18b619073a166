package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage отвечает за локальное хранилище загружаемых файлов:
// фото профилей и доказательства по обращениям, каждый вид в своём каталоге
// и со своим лимитом размера.
type FileStorage struct {
	rootPath string
}

// Подкаталоги хранилища.
const (
	KindProfile  = "profiles"
	KindEvidence = "evidence"
)

// NewFileStorage создаёт файловое хранилище и нужные каталоги.
func NewFileStorage(rootPath string) (*FileStorage, error) {
	for _, kind := range []string{KindProfile, KindEvidence} {
		if err := os.MkdirAll(filepath.Join(rootPath, kind), 0o755); err != nil {
			return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", kind, err)
		}
	}

	return &FileStorage{rootPath: rootPath}, nil
}

// Save сохраняет файл указанного вида и возвращает относительный путь.
// Запись идёт во временный файл с ограничением размера, затем rename.
func (s *FileStorage) Save(ctx context.Context, kind, originalName string, r io.Reader, maxBytes int64) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(kind, "s"), time.Now().UnixNano(), filepath.Ext(safeName))

	targetPath := filepath.Join(s.rootPath, kind, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: maxBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > maxBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", maxBytes)
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.ToSlash(filepath.Join(kind, fileName)), written, nil
}

// Delete удаляет файл из хранилища.
func (s *FileStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "file"
	}
	return name
}
