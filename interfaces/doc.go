// Package interfaces defines core interfaces and types for the encrypted
// image vault, separating interface definitions from implementations.
//
// The package provides interfaces for the key components of the system:
//
// # Storage Interfaces
//
// BlobStore: Content-addressed storage for opaque ciphertext blobs across
// multiple backend types (file, S3, IPFS, Vault).
//
// BlobStoreFactory: Creates blob stores from URI strings and manages
// multi-backend configurations for redundant storage.
//
// MetadataCatalog: Per-owner record store holding ownership, cryptographic
// parameters (IV, KDF salt, checksum) and display attributes for every
// stored object.
//
// # Core Types
//
// ContentID: 32-byte SHA-256 hash identifying one stored ciphertext blob.
//
// OwnerID: opaque identifier of the uploading principal, attached to every
// call by the upstream authentication layer. The vault trusts this value and
// performs no credential checks itself.
//
// Algorithm: closed set of supported encryption algorithms.
//
// ObjectMetadata: the catalog record shape, materializing one logical
// encrypted object together with its blob.
//
// # Error Taxonomy
//
// The package defines the sentinel errors every pipeline surfaces:
// ErrInvalidInput, ErrNotFoundOrUnauthorized, ErrIntegrity,
// ErrDecryptionFailed, ErrStorageWrite and ErrStorageDelete, plus the
// adapter-level ErrContentNotFound, ErrRecordNotFound and
// ErrBackendUnavailable.
package interfaces
