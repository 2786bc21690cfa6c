package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported photo type")
	ErrInvalidKey      = errors.New("invalid photo key")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// LocalStorage keeps photos on the local filesystem and serves them through
// the API's /photos route.
type LocalStorage struct {
	baseURL   string // Server URL (e.g., "http://localhost:8080")
	photosDir string
}

func NewLocalStorage(baseURL, uploadsDir string) (*LocalStorage, error) {
	photosDir := filepath.Join(uploadsDir, "photos")
	if err := os.MkdirAll(photosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		photosDir: photosDir,
	}, nil
}

// NewPhotoKey builds a unique key for an item photo of the given MIME type.
func NewPhotoKey(itemID int32, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return fmt.Sprintf("items/%d/%s%s", itemID, uuid.New().String(), ext), nil
}

func (s *LocalStorage) fullPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.photosDir, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/photos/%s", s.baseURL, key)
}
