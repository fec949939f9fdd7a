package backup

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := Encrypt(`{"hello":"world"}`, "pass123")
	require.NoError(t, err)

	plain, err := Decrypt(blob, "pass123")
	require.NoError(t, err)
	assert.Equal(t, `{"hello":"world"}`, plain)
}

func TestEncryptUsesFreshSaltAndNonce(t *testing.T) {
	a, err := Encrypt("same data", "pass123")
	require.NoError(t, err)
	b, err := Encrypt("same data", "pass123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptFailures(t *testing.T) {
	blob, err := Encrypt("secret", "pass123")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := Decrypt(blob, "nope")
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
	t.Run("not base64", func(t *testing.T) {
		_, err := Decrypt("!!!not-base64!!!", "pass123")
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
	t.Run("truncated", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("tiny"))
		_, err := Decrypt(short, "pass123")
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
	t.Run("tampered", func(t *testing.T) {
		raw, decErr := base64.StdEncoding.DecodeString(blob)
		require.NoError(t, decErr)
		raw[len(raw)-1] ^= 0xff
		_, err := Decrypt(base64.StdEncoding.EncodeToString(raw), "pass123")
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
}
