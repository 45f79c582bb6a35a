package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("pass"), []byte("salt"))
	k2 := DeriveKey([]byte("pass"), []byte("salt"))
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)

	k3 := DeriveKey([]byte("pass"), []byte("other-salt"))
	assert.NotEqual(t, k1, k3)
}

func TestAESGCMCodec_RoundTrip(t *testing.T) {
	codec, err := NewAESGCMCodec(DeriveKey([]byte("pass"), []byte("salt")))
	require.NoError(t, err)

	sealed, err := codec.Seal([]byte("dear diary"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "dear diary")

	plain, err := codec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("dear diary"), plain)
}

func TestAESGCMCodec_UniqueNonces(t *testing.T) {
	codec, err := NewAESGCMCodec(DeriveKey([]byte("pass"), []byte("salt")))
	require.NoError(t, err)

	a, err := codec.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := codec.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCMCodec_OpenErrors(t *testing.T) {
	codec, err := NewAESGCMCodec(DeriveKey([]byte("pass"), []byte("salt")))
	require.NoError(t, err)

	_, err = codec.Open([]byte{0x01})
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	sealed, err := codec.Seal([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF
	_, err = codec.Open(sealed)
	assert.Error(t, err)
}

func TestNewAESGCMCodec_BadKey(t *testing.T) {
	_, err := NewAESGCMCodec([]byte("short"))
	assert.Error(t, err)
}
