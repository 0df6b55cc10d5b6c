package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/imgvault/imgvault/interfaces"
)

// IPFSBackend implements a blob store using the InterPlanetary File System.
// Blobs are pinned through the node's MFS (Files API) under a directory keyed
// by content ID, which gives the otherwise content-addressed IPFS store a
// stable id-to-blob mapping and a meaningful delete.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	rootDir     string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS blob store connected to the specified
// node API host and port.
func NewIPFSBackend(host, port, rootDir string, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)

	if rootDir == "" {
		rootDir = "/imgvault"
	}
	rootDir = "/" + strings.Trim(rootDir, "/")

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		rootDir:     rootDir,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s%s", apiURL, rootDir),
	}, nil
}

// Fetch retrieves a blob from IPFS by its content identifier.
// Returns ErrContentNotFound if the blob doesn't exist or
// ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	path := b.getMFSPath(id)

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.FilesRead(ctx, path)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "file does not exist") {
			b.log.Debug("Blob not found in IPFS",
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to fetch blob from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob from IPFS: %w", err)
	}

	b.log.Debug("Fetched blob from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store writes a blob into the node's MFS and returns its content
// identifier, the SHA-256 hash of the data.
// Returns ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	path := b.getMFSPath(id)

	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	err := b.shell.FilesWrite(ctx, path, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true))
	if err != nil {
		return id, fmt.Errorf("failed to write blob to IPFS: %w", err)
	}

	b.log.Debug("Stored blob in IPFS",
		slog.String("path", path),
		slog.String("contentID", id.String()))

	return id, nil
}

// Delete removes a blob from the node's MFS, unpinning it for garbage
// collection. Returns ErrContentNotFound if the blob is already absent.
func (b *IPFSBackend) Delete(ctx context.Context, id interfaces.ContentID) error {
	path := b.getMFSPath(id)

	if !b.shell.IsUp() {
		return interfaces.ErrBackendUnavailable
	}

	if _, err := b.shell.FilesStat(ctx, path); err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "file does not exist") {
			return interfaces.ErrContentNotFound
		}
		return fmt.Errorf("failed to stat blob in IPFS: %w", err)
	}

	if err := b.shell.FilesRm(ctx, path, true); err != nil {
		return fmt.Errorf("failed to remove blob from IPFS: %w", err)
	}

	b.log.Debug("Deleted blob from IPFS", slog.String("path", path))
	return nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this blob store backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

// getMFSPath generates an MFS path for a content ID.
func (b *IPFSBackend) getMFSPath(id interfaces.ContentID) string {
	return fmt.Sprintf("%s/%s", b.rootDir, id.String())
}
