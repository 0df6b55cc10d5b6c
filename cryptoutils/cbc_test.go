package cryptoutils

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyIV(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	iv, err := NewIV(16)
	require.NoError(t, err)
	return key, iv
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"small payload", []byte("hello")},
		{"exactly one block", bytes.Repeat([]byte{0xAB}, 16)},
		{"multi-block", bytes.Repeat([]byte("imgvault"), 100)},
		{"single byte", []byte{0x42}},
		{"binary with zero bytes", []byte{0x00, 0x01, 0x00, 0xFF, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, iv := testKeyIV(t)

			ciphertext, err := EncryptCBC(key, iv, tc.data)
			require.NoError(t, err)
			assert.Equal(t, 0, len(ciphertext)%16)
			assert.NotEqual(t, tc.data, ciphertext)

			plaintext, err := DecryptCBC(key, iv, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, tc.data, plaintext)
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	key, iv := testKeyIV(t)
	ciphertext, err := EncryptCBC(key, iv, []byte("sensitive image bytes"))
	require.NoError(t, err)

	wrongKey := make([]byte, 32)
	copy(wrongKey, key)
	wrongKey[0] ^= 0xFF

	plaintext, err := DecryptCBC(wrongKey, iv, ciphertext)
	if err == nil {
		// CBC padding can accidentally parse under a wrong key (~1/256);
		// the caller-level checksum catches that case. What must never
		// happen is the original plaintext coming back.
		assert.NotEqual(t, []byte("sensitive image bytes"), plaintext)
		return
	}
	assert.True(t, errors.Is(err, ErrDecryptionFailed))
}

func TestDecryptRejectsHostileInput(t *testing.T) {
	key, iv := testKeyIV(t)

	testCases := []struct {
		name       string
		ciphertext []byte
	}{
		{"empty", nil},
		{"not block aligned", bytes.Repeat([]byte{1}, 17)},
		{"truncated to misalignment", bytes.Repeat([]byte{1}, 15)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecryptCBC(key, iv, tc.ciphertext)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecryptionFailed))
		})
	}
}

func TestDecryptCorruptedCiphertext(t *testing.T) {
	key, iv := testKeyIV(t)
	ciphertext, err := EncryptCBC(key, iv, bytes.Repeat([]byte("x"), 64))
	require.NoError(t, err)

	// Flipping a bit in the final block corrupts the padding.
	corrupted := append([]byte{}, ciphertext...)
	corrupted[len(corrupted)-1] ^= 0x01

	_, err = DecryptCBC(key, iv, corrupted)
	if err != nil {
		assert.True(t, errors.Is(err, ErrDecryptionFailed))
	}
}

func TestSameKeyDifferentIV(t *testing.T) {
	key, iv1 := testKeyIV(t)
	iv2, err := NewIV(16)
	require.NoError(t, err)
	require.NotEqual(t, iv1, iv2)

	plaintext := []byte("identical plaintext")

	c1, err := EncryptCBC(key, iv1, plaintext)
	require.NoError(t, err)
	c2, err := EncryptCBC(key, iv2, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2)
}

func TestPKCS7Padding(t *testing.T) {
	for size := 0; size < 48; size++ {
		padded := padPKCS7(bytes.Repeat([]byte{0x5A}, size), 16)
		require.Equal(t, 0, len(padded)%16)
		require.Greater(t, len(padded), size)

		unpadded, err := unpadPKCS7(padded, 16)
		require.NoError(t, err)
		require.Len(t, unpadded, size)
	}
}
