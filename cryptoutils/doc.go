// Package cryptoutils provides the cryptographic primitives of the encrypted
// image vault: passphrase key derivation and the AES-256-CBC transform
// applied to every stored object.
//
// # Key Derivation
//
// Keys are derived from the user-supplied passphrase with Argon2id and a
// per-object random salt. The derived key exists only for the duration of one
// pipeline invocation; it is never persisted and never logged. Only the salt
// and the IV are stored alongside the object's metadata.
//
// # Cipher Transform
//
// Objects are encrypted with AES-256-CBC and PKCS#7 padding. CBC carries no
// authentication tag, so decryption distinguishes exactly one failure mode:
// ErrDecryptionFailed for block misalignment or invalid padding, covering
// both a wrong key and corrupted ciphertext without telling them apart.
// Callers that need a hard wrong-key guarantee verify the stored plaintext
// checksum after decryption.
package cryptoutils
