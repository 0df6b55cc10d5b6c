package interfaces

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying a ciphertext blob.
type ContentID [32]byte

// NewContentIDFromBytes creates a content ID from a raw 32-byte slice.
func NewContentIDFromBytes(source []byte) (ContentID, error) {
	if len(source) != 32 {
		return ContentID{}, errors.New("invalid ContentID conversion from bytes: incorrect length")
	}

	var hash [32]byte
	copy(hash[:], source)
	return ContentID(hash), nil
}

// NewContentIDFromHex parses a content ID from its hex representation.
func NewContentIDFromHex(source string) (ContentID, error) {
	// Remove 0x prefix if present
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var hash [32]byte
	copy(hash[:], hashBytes)
	return ContentID(hash), nil
}

// ComputeID calculates the content ID of a blob.
func ComputeID(data []byte) ContentID {
	hash := sha256.Sum256(data)
	return ContentID(hash)
}

// String returns hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// MarshalText implements encoding.TextMarshaler so records serialize the ID
// as hex in JSON.
func (id ContentID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ContentID) UnmarshalText(text []byte) error {
	parsed, err := NewContentIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// OwnerID identifies the principal that uploaded an object. It arrives
// already validated by the upstream authentication layer; the vault performs
// no credential checks of its own.
type OwnerID string

// String returns the raw owner identifier.
func (o OwnerID) String() string { return string(o) }

// Algorithm tags the encryption algorithm an object was stored under.
// The set is closed; only AES-256-CBC is supported at present.
type Algorithm string

// AlgorithmAES256CBC is AES with a 256-bit key in CBC mode with PKCS#7 padding.
const AlgorithmAES256CBC Algorithm = "AES-256-CBC"

// Supported reports whether the algorithm is a known value.
func (a Algorithm) Supported() bool {
	return a == AlgorithmAES256CBC
}

// IVSize returns the initialization vector length the algorithm requires,
// or 0 for unsupported algorithms.
func (a Algorithm) IVSize() int {
	if a == AlgorithmAES256CBC {
		return 16
	}
	return 0
}

// KeySize returns the symmetric key length the algorithm requires,
// or 0 for unsupported algorithms.
func (a Algorithm) KeySize() int {
	if a == AlgorithmAES256CBC {
		return 32
	}
	return 0
}

// ObjectMetadata is the catalog record for one encrypted object. A record and
// the blob it references together materialize the logical object; neither is
// mutated after creation.
type ObjectMetadata struct {
	// ContentID links the record to its ciphertext blob.
	ContentID ContentID `json:"contentId"`

	// Owner is the sole authorization boundary: no operation exposes or
	// mutates a record whose owner does not match the requesting principal.
	Owner OwnerID `json:"ownerId"`

	// OriginalName is the display name supplied at upload time.
	OriginalName string `json:"originalName"`

	// DeclaredMimeType labels the decrypted response; it is never used to
	// interpret the stored ciphertext.
	DeclaredMimeType string `json:"declaredMimeType"`

	// Algorithm the object was encrypted under.
	Algorithm Algorithm `json:"algorithm"`

	// IV is the per-object initialization vector. Persisted, never reused
	// across objects. The derived key is never persisted.
	IV []byte `json:"iv"`

	// KDFSalt salts the passphrase key derivation for this object.
	KDFSalt []byte `json:"kdfSalt"`

	// Checksum is the SHA-256 of the pre-encryption payload. Verified after
	// decryption so a wrong passphrase can never return garbage even when the
	// CBC padding happens to parse.
	Checksum []byte `json:"checksum"`

	// Compressed records whether the payload was zstd-compressed before
	// encryption.
	Compressed bool `json:"compressed"`

	// Size is the plaintext size in bytes.
	Size int64 `json:"size"`

	// CreatedAt is set once at upload time.
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that the record carries usable cryptographic parameters.
// A record that fails validation is corrupt and must not be decrypted.
func (m *ObjectMetadata) Validate() error {
	if !m.Algorithm.Supported() {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrIntegrity, m.Algorithm)
	}
	if len(m.IV) != m.Algorithm.IVSize() {
		return fmt.Errorf("%w: iv is %d bytes, want %d", ErrIntegrity, len(m.IV), m.Algorithm.IVSize())
	}
	if len(m.KDFSalt) == 0 {
		return fmt.Errorf("%w: missing kdf salt", ErrIntegrity)
	}
	if len(m.Checksum) != sha256.Size {
		return fmt.Errorf("%w: checksum is %d bytes, want %d", ErrIntegrity, len(m.Checksum), sha256.Size)
	}
	return nil
}
