package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imgvault/imgvault/interfaces"
)

// MultiStore implements interfaces.BlobStore over multiple backends for
// redundancy: writes go to every available backend, reads come from the
// first backend holding the content, deletes are applied to all.
type MultiStore struct {
	backends []interfaces.BlobStore
	log      *slog.Logger
}

// NewMultiStore creates a new multi-backend blob store.
func NewMultiStore(backends []interfaces.BlobStore, logger *slog.Logger) *MultiStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		backends: backends,
		log:      logger,
	}
}

// Fetch returns the blob from the first available backend that has it.
func (m *MultiStore) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	var errs []error
	notFound := 0

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", id.String()))
			continue
		}

		data, err := backend.Fetch(ctx, id)
		if err == nil {
			m.log.Debug("Fetched blob",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", id.String()),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		if errors.Is(err, interfaces.ErrContentNotFound) {
			notFound++
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", backend.Name()),
			slog.String("content_id", id.String()),
			"err", err)
	}

	if notFound > 0 && notFound == len(errs) {
		return nil, interfaces.ErrContentNotFound
	}

	m.log.Error("All backends failed to fetch blob",
		slog.String("content_id", id.String()),
		slog.Int("failed_backends", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("all backends failed to fetch %s: %v", id, errs)
}

// Store saves the blob to all available backends. The write succeeds if at
// least one backend accepted the blob.
func (m *MultiStore) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	var result interfaces.ContentID
	var success bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			continue
		}

		id, err := backend.Store(ctx, data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Warn("Failed to store blob to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}

		result = id
		success = true
	}

	if !success {
		m.log.Error("All backends failed to store blob",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return interfaces.ContentID{}, fmt.Errorf("all backends failed to store blob: %v", errs)
	}

	return result, nil
}

// Delete removes the blob from all available backends. A backend that no
// longer holds the blob is not an error; ErrContentNotFound is returned only
// when no backend held it.
func (m *MultiStore) Delete(ctx context.Context, id interfaces.ContentID) error {
	var deleted bool
	var absent bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			continue
		}

		err := backend.Delete(ctx, id)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, interfaces.ErrContentNotFound):
			absent = true
		default:
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Warn("Failed to delete blob from backend",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", id.String()),
				"err", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to delete %s from %d backend(s): %v", id, len(errs), errs)
	}
	if !deleted && absent {
		return interfaces.ErrContentNotFound
	}
	if !deleted && !absent {
		return fmt.Errorf("%w: no backend available for delete", interfaces.ErrBackendUnavailable)
	}

	return nil
}

// Available returns true if at least one backend is accessible.
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns a unique identifier for this blob store.
func (m *MultiStore) Name() string {
	return fmt.Sprintf("multi-%d", len(m.backends))
}

// LocationURI returns a synthetic URI listing the aggregated backends.
func (m *MultiStore) LocationURI() string {
	uri := "multi://"
	for i, backend := range m.backends {
		if i > 0 {
			uri += ","
		}
		uri += backend.LocationURI()
	}
	return uri
}
