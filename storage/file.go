package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/imgvault/imgvault/interfaces"
)

// FileBackend implements a blob store using the local file system. Blobs are
// sharded into two-level directories by content ID prefix so large vaults do
// not degrade into one giant directory.
type FileBackend struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file blob store rooted at the specified base
// directory, creating the blob and temp directories if they don't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "blobs"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(baseDir, ".tmp"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch retrieves a blob from the file system by its content identifier.
// Returns ErrContentNotFound if the file doesn't exist.
func (b *FileBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	filePath := b.getFilePath(id)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	b.log.Debug("Fetched blob from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Store saves a blob to the file system and returns its content identifier,
// the SHA-256 hash of the data. The blob is written to a temp file first and
// moved into place, so a crash mid-write never leaves a partial blob visible.
func (b *FileBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	filePath := b.getFilePath(id)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return id, fmt.Errorf("failed to create shard directory: %w", err)
	}

	tmpPath := filepath.Join(b.baseDir, ".tmp", uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return id, fmt.Errorf("failed to write temp blob: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return id, fmt.Errorf("failed to commit blob: %w", err)
	}

	b.log.Debug("Stored blob in file",
		slog.String("path", filePath),
		slog.String("contentID", id.String()))

	return id, nil
}

// Delete removes a blob from the file system.
// Returns ErrContentNotFound if the blob is already absent.
func (b *FileBackend) Delete(ctx context.Context, id interfaces.ContentID) error {
	filePath := b.getFilePath(id)

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return interfaces.ErrContentNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	// Drop the shard directory if this was its last blob. Best effort.
	_ = os.Remove(filepath.Dir(filePath))

	b.log.Debug("Deleted blob from file", slog.String("path", filePath))
	return nil
}

// Available checks if the file backend is accessible by verifying the base
// directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this blob store backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

// getFilePath generates the sharded path for a content ID.
func (b *FileBackend) getFilePath(id interfaces.ContentID) string {
	idStr := id.String()
	return filepath.Join(b.baseDir, "blobs", idStr[:2], idStr[2:4], idStr)
}
