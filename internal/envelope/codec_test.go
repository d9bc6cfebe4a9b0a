package envelope_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/anikdutta/credvault/internal/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMasterKey = "0123456789abcdef0123456789abcdef"

func newCodec() *envelope.Codec {
	return envelope.NewCodec(testMasterKey)
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	c := newCodec()

	plaintexts := []string{
		"sk-test1234567890",
		"a1b2c3d4",
		"sk-ant-" + strings.Repeat("x", 90),
		strings.Repeat("Z", 200),
		"key-with-specials-!@#$%^&*()",
	}
	users := []string{"user-1", "user-2", "00000000-0000-0000-0000-000000000001"}

	for _, p := range plaintexts {
		for _, u := range users {
			blob, err := c.Encrypt(p, u)
			require.NoError(t, err)

			got, err := c.Decrypt(blob, u)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	c := newCodec()

	first, err := c.Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)
	second, err := c.Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_TamperDetection(t *testing.T) {
	c := newCodec()

	blob, err := c.Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// Flip one bit in every region of the blob: salt, iv, tag, ciphertext.
	for _, offset := range []int{0, 35, 50, len(raw) - 1} {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[offset] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered), "user-1")
		assert.ErrorIs(t, err, envelope.ErrIntegrity, "bit flip at offset %d", offset)
	}
}

func TestDecrypt_UserIsolation(t *testing.T) {
	c := newCodec()

	blob, err := c.Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)

	_, err = c.Decrypt(blob, "user-2")
	assert.ErrorIs(t, err, envelope.ErrIntegrity)
}

func TestDecrypt_WrongMasterKey(t *testing.T) {
	blob, err := newCodec().Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)

	other := envelope.NewCodec("another-master-key-of-32-chars!!")
	_, err = other.Decrypt(blob, "user-1")
	assert.ErrorIs(t, err, envelope.ErrIntegrity)
}

func TestDecrypt_BlobTooShort(t *testing.T) {
	c := newCodec()

	short := base64.StdEncoding.EncodeToString([]byte("way too short"))
	_, err := c.Decrypt(short, "user-1")
	assert.ErrorIs(t, err, envelope.ErrIntegrity)
}

func TestDecrypt_InvalidBase64(t *testing.T) {
	c := newCodec()

	_, err := c.Decrypt("not base64 at all!!!", "user-1")
	assert.ErrorIs(t, err, envelope.ErrIntegrity)
}

func TestDecrypt_CorruptedBase64Character(t *testing.T) {
	c := newCodec()

	blob, err := c.Encrypt("sk-test1234567890", "user-1")
	require.NoError(t, err)

	// Swap one base64 character for a different valid one.
	idx := len(blob) / 2
	replacement := byte('A')
	if blob[idx] == 'A' {
		replacement = 'B'
	}
	corrupted := blob[:idx] + string(replacement) + blob[idx+1:]

	got, err := c.Decrypt(corrupted, "user-1")
	assert.ErrorIs(t, err, envelope.ErrIntegrity)
	assert.Empty(t, got)
}
