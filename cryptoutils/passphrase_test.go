package cryptoutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := NewKDFSalt()
	require.NoError(t, err)
	require.Len(t, salt, KDFSaltSize)

	k1 := DeriveKey("correct-horse", salt, 32)
	k2 := DeriveKey("correct-horse", salt, 32)

	require.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
}

func TestDeriveKeyPassphraseSensitivity(t *testing.T) {
	salt, err := NewKDFSalt()
	require.NoError(t, err)

	k1 := DeriveKey("correct-horse", salt, 32)
	k2 := DeriveKey("wrong-pass", salt, 32)

	assert.NotEqual(t, k1, k2)
}

func TestDeriveKeySaltSensitivity(t *testing.T) {
	salt1, err := NewKDFSalt()
	require.NoError(t, err)
	salt2, err := NewKDFSalt()
	require.NoError(t, err)
	require.NotEqual(t, salt1, salt2)

	k1 := DeriveKey("correct-horse", salt1, 32)
	k2 := DeriveKey("correct-horse", salt2, 32)

	assert.NotEqual(t, k1, k2)
}

func TestNewIVLengthAndUniqueness(t *testing.T) {
	iv1, err := NewIV(16)
	require.NoError(t, err)
	iv2, err := NewIV(16)
	require.NoError(t, err)

	assert.Len(t, iv1, 16)
	assert.Len(t, iv2, 16)
	assert.NotEqual(t, iv1, iv2)
}
