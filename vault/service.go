package vault

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/imgvault/imgvault/cryptoutils"
	"github.com/imgvault/imgvault/interfaces"
	"github.com/imgvault/imgvault/metrics"
)

// DefaultMaxObjectSize caps uploads at 32 MiB unless configured otherwise.
const DefaultMaxObjectSize = 32 << 20

// Config carries the tunables for a Service.
type Config struct {
	// MaxObjectSize is the upload size cap in bytes. Zero selects
	// DefaultMaxObjectSize.
	MaxObjectSize int64

	// Compress enables zstd compression of the payload before encryption.
	Compress bool

	// Log is the structured logger for operational insights.
	Log *slog.Logger
}

// Service composes the upload, retrieval and deletion pipelines over an
// injected blob store and metadata catalog. A single instance is constructed
// at process start and shared by all requests; it holds no per-request state.
type Service struct {
	blobs         interfaces.BlobStore
	catalog       interfaces.MetadataCatalog
	maxObjectSize int64
	compress      bool
	encoder       *zstd.Encoder
	decoder       *zstd.Decoder
	log           *slog.Logger
}

// NewService creates a vault service.
func NewService(blobs interfaces.BlobStore, cat interfaces.MetadataCatalog, cfg Config) (*Service, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.MaxObjectSize <= 0 {
		cfg.MaxObjectSize = DefaultMaxObjectSize
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Service{
		blobs:         blobs,
		catalog:       cat,
		maxObjectSize: cfg.MaxObjectSize,
		compress:      cfg.Compress,
		encoder:       encoder,
		decoder:       decoder,
		log:           cfg.Log,
	}, nil
}

// UploadRequest carries the inputs of one upload pipeline invocation.
type UploadRequest struct {
	Owner            interfaces.OwnerID
	Payload          io.Reader
	OriginalName     string
	DeclaredMimeType string
	Algorithm        interfaces.Algorithm
	Passphrase       string
}

// Upload encrypts the payload and stores it as a new object: blob first, then
// the metadata record referencing it. Returns the created record.
//
// All input validation happens before any I/O; a failed metadata write
// triggers a compensating delete of the just-written blob.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*interfaces.ObjectMetadata, error) {
	if req.Passphrase == "" {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: passphrase is required", interfaces.ErrInvalidInput)
	}
	if !req.Algorithm.Supported() {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: unsupported algorithm %q", interfaces.ErrInvalidInput, req.Algorithm)
	}
	if req.Owner == "" {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: owner is required", interfaces.ErrInvalidInput)
	}

	plaintext, err := s.readPayload(req.Payload)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	payload := plaintext
	compressed := false
	if s.compress {
		encoded := s.encoder.EncodeAll(plaintext, nil)
		// Incompressible data (already-compressed images) can grow; keep
		// whichever form is smaller.
		if len(encoded) < len(plaintext) {
			payload = encoded
			compressed = true
		}
	}

	salt, err := cryptoutils.NewKDFSalt()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageWrite, err)
	}
	iv, err := cryptoutils.NewIV(req.Algorithm.IVSize())
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageWrite, err)
	}

	key := cryptoutils.DeriveKey(req.Passphrase, salt, req.Algorithm.KeySize())
	checksum := sha256.Sum256(payload)

	ciphertext, err := cryptoutils.EncryptCBC(key, iv, payload)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageWrite, err)
	}

	// Blob write completes, and is durable, before the referencing record
	// exists.
	contentID, err := s.blobs.Store(ctx, ciphertext)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: blob write: %v", interfaces.ErrStorageWrite, err)
	}

	record := &interfaces.ObjectMetadata{
		ContentID:        contentID,
		Owner:            req.Owner,
		OriginalName:     req.OriginalName,
		DeclaredMimeType: req.DeclaredMimeType,
		Algorithm:        req.Algorithm,
		IV:               iv,
		KDFSalt:          salt,
		Checksum:         checksum[:],
		Compressed:       compressed,
		Size:             int64(len(plaintext)),
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.catalog.Put(ctx, record); err != nil {
		s.compensateBlobWrite(ctx, contentID)
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: metadata write: %v", interfaces.ErrStorageWrite, err)
	}

	s.log.Info("Object uploaded",
		slog.String("owner", req.Owner.String()),
		slog.String("contentID", contentID.String()),
		slog.Int64("size", record.Size),
		slog.Bool("compressed", compressed))

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return record, nil
}

// Retrieve fetches, decrypts and returns an object's plaintext together with
// its metadata record. The plaintext is never persisted.
func (s *Service) Retrieve(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID, passphrase string) ([]byte, *interfaces.ObjectMetadata, error) {
	if passphrase == "" {
		metrics.RetrievalsTotal.WithLabelValues("invalid").Inc()
		return nil, nil, fmt.Errorf("%w: passphrase is required", interfaces.ErrInvalidInput)
	}

	record, err := s.catalog.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			metrics.RetrievalsTotal.WithLabelValues("not_found").Inc()
			return nil, nil, interfaces.ErrNotFoundOrUnauthorized
		}
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("metadata lookup: %w", err)
	}

	if err := record.Validate(); err != nil {
		metrics.RetrievalsTotal.WithLabelValues("integrity").Inc()
		return nil, nil, err
	}

	key := cryptoutils.DeriveKey(passphrase, record.KDFSalt, record.Algorithm.KeySize())

	ciphertext, err := s.blobs.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrContentNotFound) {
			// A record whose blob has vanished is an orphan, not a
			// caller mistake.
			s.log.Error("Metadata record references missing blob",
				slog.String("owner", owner.String()),
				slog.String("contentID", id.String()))
			metrics.RetrievalsTotal.WithLabelValues("integrity").Inc()
			return nil, nil, fmt.Errorf("%w: blob missing for record", interfaces.ErrIntegrity)
		}
		metrics.RetrievalsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("blob fetch: %w", err)
	}

	payload, err := cryptoutils.DecryptCBC(key, record.IV, ciphertext)
	if err != nil {
		metrics.RetrievalsTotal.WithLabelValues("decryption_failed").Inc()
		return nil, nil, fmt.Errorf("%w: %v", interfaces.ErrDecryptionFailed, err)
	}

	// CBC padding can accidentally parse under a wrong key; the checksum
	// guarantees a wrong passphrase never yields garbage.
	digest := sha256.Sum256(payload)
	if subtle.ConstantTimeCompare(digest[:], record.Checksum) != 1 {
		metrics.RetrievalsTotal.WithLabelValues("decryption_failed").Inc()
		return nil, nil, fmt.Errorf("%w: checksum mismatch", interfaces.ErrDecryptionFailed)
	}

	plaintext := payload
	if record.Compressed {
		plaintext, err = s.decoder.DecodeAll(payload, nil)
		if err != nil {
			metrics.RetrievalsTotal.WithLabelValues("integrity").Inc()
			return nil, nil, fmt.Errorf("%w: decompression failed after checksum pass", interfaces.ErrIntegrity)
		}
	}

	metrics.RetrievalsTotal.WithLabelValues("ok").Inc()
	return plaintext, record, nil
}

// Delete removes an object's blob and metadata record. Once Delete returns
// nil, no metadata-only state survives; a blob that is already absent is
// treated as effectively deleted rather than fatal.
func (s *Service) Delete(ctx context.Context, owner interfaces.OwnerID, id interfaces.ContentID) error {
	_, err := s.catalog.Get(ctx, owner, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			metrics.DeletionsTotal.WithLabelValues("not_found").Inc()
			return interfaces.ErrNotFoundOrUnauthorized
		}
		metrics.DeletionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("metadata lookup: %w", err)
	}

	if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, interfaces.ErrContentNotFound) {
		// An object whose blob cannot be deleted is safer kept
		// discoverable than silently orphaned.
		metrics.DeletionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: blob delete: %v", interfaces.ErrStorageDelete, err)
	}

	if err := s.catalog.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			// A concurrent delete won the race; the object is gone either way.
			metrics.DeletionsTotal.WithLabelValues("ok").Inc()
			return nil
		}
		metrics.DeletionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: metadata delete: %v", interfaces.ErrStorageDelete, err)
	}

	s.log.Info("Object deleted",
		slog.String("owner", owner.String()),
		slog.String("contentID", id.String()))

	metrics.DeletionsTotal.WithLabelValues("ok").Inc()
	return nil
}

// List returns the metadata records of all objects belonging to one owner,
// newest first.
func (s *Service) List(ctx context.Context, owner interfaces.OwnerID) ([]*interfaces.ObjectMetadata, error) {
	return s.catalog.ListOwner(ctx, owner)
}

// readPayload buffers the payload, enforcing the non-empty and size-cap
// preconditions.
func (s *Service) readPayload(payload io.Reader) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", interfaces.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(payload, s.maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", interfaces.ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: payload is empty", interfaces.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxObjectSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", interfaces.ErrInvalidInput, s.maxObjectSize)
	}

	return data, nil
}

// compensateBlobWrite deletes a blob whose metadata write failed. If the
// delete also fails the orphan is logged for out-of-band reconciliation.
func (s *Service) compensateBlobWrite(ctx context.Context, id interfaces.ContentID) {
	if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, interfaces.ErrContentNotFound) {
		metrics.OrphanedBlobsTotal.Inc()
		s.log.Error("Compensating blob delete failed, orphan requires reconciliation",
			slog.String("contentID", id.String()),
			"err", err)
	}
}
