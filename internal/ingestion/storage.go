// Package ingestion orchestrates the feed pipeline: archiving the raw
// document, parsing it, upserting advisories, and scoring their vectors.
package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for archived feed documents.
type StorageClient interface {
	PutDocument(ctx context.Context, tenantID, documentID string, data []byte) error
	GetDocument(ctx context.Context, tenantID, documentID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(tenantID, documentID string) string {
	return filepath.Join(s.BaseDir, tenantID, "documents", documentID+".json")
}

// PutDocument stores a feed document blob. Archived feeds can carry
// embargoed advisories, so files are owner-only.
func (s *LocalStorage) PutDocument(ctx context.Context, tenantID, documentID string, data []byte) error {
	path := s.path(tenantID, documentID)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// GetDocument retrieves a feed document blob.
func (s *LocalStorage) GetDocument(ctx context.Context, tenantID, documentID string) ([]byte, error) {
	return os.ReadFile(s.path(tenantID, documentID))
}
