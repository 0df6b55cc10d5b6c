// Package storage provides content-addressed blob store backends holding the
// ciphertext of encrypted objects.
//
// The package offers a unified interface for storing, retrieving and deleting
// opaque ciphertext blobs identified by SHA-256 hash across multiple backend
// types:
//
//   - File system storage for local deployments and testing
//   - S3-compatible object storage for cloud deployments
//   - IPFS storage for decentralized content
//   - HashiCorp Vault KV v2 storage for small deployments behind Vault
//
// # Storage URI Format
//
// Blob stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/imgvault/blobs/
//   - s3://bucket-name/prefix/?region=us-west-2
//   - ipfs://ipfs.example.com:5001/
//   - vault://vault.example.com:8200/secret/imgvault?token=...
//
// # Content Addressing
//
// The content identifier is the SHA-256 hash of the ciphertext, assigned at
// write time. Because every object is encrypted under a fresh random IV, two
// uploads of identical plaintext still produce distinct blobs and distinct
// identifiers.
//
// # Multi-Store
//
// MultiStore aggregates several backends for redundancy: Store writes to
// every available backend, Fetch returns content from the first backend that
// has it, and Delete removes the blob from all of them.
package storage
