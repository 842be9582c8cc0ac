package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ArtifactStorage persists raw provider responses that failed validation so
// they can be inspected after the fact. The audit log records the error; the
// artifact keeps the payload itself.
type ArtifactStorage interface {
	EnsureDir() error
	SaveRawResponse(analysisID uuid.UUID, provider, raw string) (string, error)
}

type artifactStorage struct {
	basePath string
}

func NewArtifactStorage(basePath string) ArtifactStorage {
	return &artifactStorage{basePath: basePath}
}

// EnsureDir implements ArtifactStorage.
func (s *artifactStorage) EnsureDir() error {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return nil
}

// SaveRawResponse implements ArtifactStorage.
func (s *artifactStorage) SaveRawResponse(analysisID uuid.UUID, provider, raw string) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%s_%s.txt", analysisID, provider, time.Now().Format("20060102T150405"))
	path := filepath.Join(s.basePath, filename)

	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return "", fmt.Errorf("failed to write raw response artifact: %w", err)
	}

	return path, nil
}
