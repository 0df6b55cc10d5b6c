package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// BlobStoreLocation represents a URI for a blob store backend.
type BlobStoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewBlobStoreLocation creates a new blob store location from a URI string
// with validation.
func NewBlobStoreLocation(uri string) (BlobStoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return BlobStoreLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := parsed.Scheme
	switch scheme {
	case "file", "s3", "ipfs", "vault":
		// Valid scheme
	default:
		return BlobStoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return BlobStoreLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc BlobStoreLocation) String() string {
	return loc.Raw
}

// GetParam returns a query parameter value.
func (loc BlobStoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc BlobStoreLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrContentNotFound is returned when a requested blob cannot be found in
	// the blob store.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a blob store backend is not
	// accessible. This could be due to network issues, authentication
	// failures, or service outages.
	ErrBackendUnavailable = errors.New("blob store backend unavailable")

	// ErrInvalidLocationURI is returned when a blob store URI is malformed or
	// unsupported. URIs must follow the format:
	// [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid blob store location URI")
)

// BlobStore provides content-addressed storage for ciphertext blobs. Entries
// are opaque: the store depends on no structure beyond "write returns an id"
// and "read-by-id returns the exact bytes written".
type BlobStore interface {
	// Fetch retrieves a blob by content ID. Returns ErrContentNotFound if no
	// blob exists under the ID.
	Fetch(ctx context.Context, id ContentID) ([]byte, error)

	// Store saves a blob and returns its content ID.
	Store(ctx context.Context, data []byte) (ContentID, error)

	// Delete removes a blob. Returns ErrContentNotFound if the blob is
	// already absent.
	Delete(ctx context.Context, id ContentID) error

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// BlobStoreFactory creates blob stores from location URIs.
type BlobStoreFactory interface {
	// BlobStoreFor creates a backend from a URI.
	// Supports file://, s3://, ipfs://, vault://
	BlobStoreFor(location BlobStoreLocation) (BlobStore, error)

	// CreateMultiStore creates an aggregated blob store that writes to every
	// backend and reads from the first one holding the content.
	CreateMultiStore(locations []BlobStoreLocation) (BlobStore, error)
}
