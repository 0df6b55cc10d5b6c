package interfaces

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by catalog adapters when no record exists for
// the requested owner and content ID. The pipelines translate it to
// ErrNotFoundOrUnauthorized before it reaches a caller.
var ErrRecordNotFound = errors.New("metadata record not found")

// MetadataCatalog stores one ObjectMetadata record per encrypted object,
// keyed by owner and content ID. Every call is a single atomic record
// operation; no multi-record transactions are required since each object's
// blob and metadata are manipulated by identifier, not by range.
type MetadataCatalog interface {
	// Put persists a new record. The record is never mutated afterwards.
	Put(ctx context.Context, record *ObjectMetadata) error

	// Get returns the record for (owner, id), or ErrRecordNotFound. A record
	// stored under a different owner is indistinguishable from an absent one.
	Get(ctx context.Context, owner OwnerID, id ContentID) (*ObjectMetadata, error)

	// Delete removes the record for (owner, id), or returns
	// ErrRecordNotFound.
	Delete(ctx context.Context, owner OwnerID, id ContentID) error

	// ListOwner returns all records belonging to one owner, newest first.
	ListOwner(ctx context.Context, owner OwnerID) ([]*ObjectMetadata, error)

	// Close releases any resources held by the catalog.
	Close() error
}
