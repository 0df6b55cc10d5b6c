package cryptoutils

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// KDFSaltSize is the length of the per-object key derivation salt.
const KDFSaltSize = 16

// Argon2id parameters, per the RFC 9106 low-memory recommendation.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// NewKDFSalt generates a fresh random salt for passphrase key derivation.
func NewKDFSalt() ([]byte, error) {
	salt := make([]byte, KDFSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate kdf salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a symmetric key of the given length from a passphrase
// using Argon2id with a per-object salt. The same passphrase and salt always
// produce the same key, so no key material ever needs to be persisted.
func DeriveKey(passphrase string, salt []byte, keyLen int) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, uint32(keyLen))
}

// NewIV generates a cryptographically random initialization vector of the
// given length. Uniqueness is probabilistic, but the space is large enough
// that collision across objects is not a practical concern.
func NewIV(size int) ([]byte, error) {
	iv := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return iv, nil
}
