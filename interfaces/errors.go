package interfaces

import "errors"

// Pipeline error taxonomy. The storage adapters surface failures verbatim as
// these kinds; the pipelines add no silent recovery except the compensating
// blob delete on a failed metadata write and the tolerant already-absent
// branch on deletion.
var (
	// ErrInvalidInput is returned for caller-correctable problems (missing
	// payload or passphrase, unsupported algorithm, oversized upload). It
	// always fails fast, before any I/O occurs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFoundOrUnauthorized is returned when a record does not exist or
	// exists under a different owner. The two cases are deliberately merged
	// so the vault never reveals whether a content ID exists for another
	// owner.
	ErrNotFoundOrUnauthorized = errors.New("object not found or unauthorized")

	// ErrIntegrity is returned when stored metadata is structurally unusable
	// (missing or wrong-length IV, unknown algorithm) or the blob referenced
	// by a record has vanished.
	ErrIntegrity = errors.New("stored object integrity error")

	// ErrDecryptionFailed is returned for a wrong passphrase or corrupted
	// ciphertext. The two causes are never distinguished to the caller.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrStorageWrite is returned when the blob store or catalog rejected a
	// write or was unavailable.
	ErrStorageWrite = errors.New("storage write failure")

	// ErrStorageDelete is returned when blob or record deletion failed for a
	// reason other than the content already being absent.
	ErrStorageDelete = errors.New("storage delete failure")
)
