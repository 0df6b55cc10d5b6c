package cryptoutils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ErrDecryptionFailed is returned when ciphertext cannot be decrypted: the
// input is not block-aligned or the padding is invalid after decryption.
// A wrong key and corrupted ciphertext are deliberately indistinguishable.
var ErrDecryptionFailed = errors.New("cbc decryption failed")

// EncryptCBC encrypts plaintext with AES in CBC mode using PKCS#7 padding.
// The key must be 32 bytes (AES-256) and the IV one block (16 bytes) long.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("iv is %d bytes, want %d", len(iv), block.BlockSize())
	}

	padded := padPKCS7(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptCBC decrypts AES-CBC ciphertext and strips PKCS#7 padding.
// Returns ErrDecryptionFailed for misaligned input or invalid padding.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("iv is %d bytes, want %d", len(iv), block.BlockSize())
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block-aligned", ErrDecryptionFailed)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpadPKCS7(plaintext, block.BlockSize())
}

// padPKCS7 appends 1..blockSize bytes, each holding the pad length. Input
// that is already block-aligned gains a full block of padding.
func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// unpadPKCS7 validates and strips PKCS#7 padding. Every padding byte is
// checked in constant time so hostile input cannot panic or leak position.
func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrDecryptionFailed)
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryptionFailed)
	}

	valid := 1
	for _, b := range data[len(data)-padLen:] {
		valid &= subtle.ConstantTimeByteEq(b, byte(padLen))
	}
	if valid != 1 {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryptionFailed)
	}

	return data[:len(data)-padLen], nil
}
