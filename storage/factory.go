package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/imgvault/imgvault/interfaces"
)

// Factory creates blob stores from URI strings and manages multi-backend
// configurations for redundant storage.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a new factory instance that can create blob stores.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{log: logger}
}

// BlobStoreFor creates a blob store from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS node MFS storage
//   - vault:// - HashiCorp Vault KV v2 storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (f *Factory) BlobStoreFor(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	switch strings.ToLower(location.Scheme) {
	case "file":
		return f.createFileBackend(location)
	case "s3":
		return f.createS3Backend(location)
	case "ipfs":
		return f.createIPFSBackend(location)
	case "vault":
		return f.createVaultBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiStore creates a multi-backend blob store from a list of location
// URIs. The multi-store aggregates all valid backends, storing content to all
// of them and fetching from the first one that has the content. Returns an
// error if no valid backends could be created from the provided URIs.
func (f *Factory) CreateMultiStore(locations []interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	backends := make([]interfaces.BlobStore, 0, len(locations))

	for _, location := range locations {
		backend, err := f.BlobStoreFor(location)
		if err != nil {
			f.log.Warn("Failed to create blob store backend",
				"err", err,
				slog.String("locationURI", location.String()))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid blob store backends created")
	}

	return NewMultiStore(backends, f.log), nil
}

// createFileBackend creates a file system blob store.
// URI format: file:///absolute/path/ or file://./relative/path/
func (f *Factory) createFileBackend(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	f.log.Debug("Creating file backend", slog.String("uri", location.String()))

	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("empty path in file URI: %s", location)
	}

	return NewFileBackend(path, f.log)
}

// createS3Backend creates an S3 or S3-compatible blob store.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=custom.s3.com
func (f *Factory) createS3Backend(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	f.log.Debug("Creating S3 backend", slog.String("uri", location.String()))

	bucketName := location.Host
	prefix := strings.TrimPrefix(location.Path, "/")

	region := location.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := location.GetParam("endpoint")

	var accessKey, secretKey string
	if location.Auth != "" {
		parts := strings.SplitN(location.Auth, ":", 2)
		accessKey = parts[0]
		if len(parts) == 2 {
			secretKey = parts[1]
		}
	}

	return NewS3Backend(bucketName, prefix, region, endpoint, accessKey, secretKey, f.log)
}

// createIPFSBackend creates an IPFS blob store.
// URI format: ipfs://host:port/rootdir
func (f *Factory) createIPFSBackend(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	f.log.Debug("Creating IPFS backend", slog.String("uri", location.String()))

	host, port := splitHostPort(location.Host, "5001")
	return NewIPFSBackend(host, port, location.Path, f.log)
}

// createVaultBackend creates a Vault KV v2 blob store.
// URI format: vault://host:port/mount/datapath?token=...&scheme=https
func (f *Factory) createVaultBackend(location interfaces.BlobStoreLocation) (interfaces.BlobStore, error) {
	f.log.Debug("Creating Vault backend", slog.String("uri", location.String()))

	scheme := location.GetParam("scheme")
	if scheme == "" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, location.Host)

	parts := strings.SplitN(strings.Trim(location.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid Vault URI path, expected vault://host:port/mount/datapath")
	}

	return NewVaultKVBackend(address, parts[0], parts[1], location.GetParam("token"), f.log)
}

// splitHostPort splits "host:port", falling back to the default port.
func splitHostPort(hostport, defaultPort string) (string, string) {
	if idx := strings.LastIndex(hostport, ":"); idx >= 0 {
		return hostport[:idx], hostport[idx+1:]
	}
	return hostport, defaultPort
}
