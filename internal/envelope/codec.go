// Package envelope encrypts and decrypts user credentials with per-record
// keys derived from a single master secret. Each blob is self-describing:
// given the master key and the owning user id it can be decrypted on its
// own, with no external key state.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrIntegrity means a blob cannot be trusted: it is malformed, was
// tampered with, or was encrypted for a different user. It is distinct
// from configuration and validation failures and must never be downgraded.
var ErrIntegrity = errors.New("ciphertext integrity check failed")

const (
	saltSize   = 32
	ivSize     = 16
	tagSize    = 16
	keySize    = 32 // AES-256
	iterations = 100000

	minBlobSize = saltSize + ivSize + tagSize
)

// Codec performs authenticated encryption of credential strings.
// Safe for concurrent use; it holds no mutable state.
type Codec struct {
	masterKey string
}

// NewCodec creates a Codec from the environment-provided master key.
// Key strength is enforced at config load, not here.
func NewCodec(masterKey string) *Codec {
	return &Codec{masterKey: masterKey}
}

// deriveKey stretches the master key and user id into a per-record AES key.
// The user id is part of the key material, not merely associated data, so
// one user's records can never be decrypted with another user's key even
// if salts collide.
func (c *Codec) deriveKey(salt []byte, userID string) []byte {
	material := []byte(c.masterKey + userID)
	return pbkdf2.Key(material, salt, iterations, keySize, sha256.New)
}

// Encrypt seals plaintext into a base64 blob laid out as
// salt(32) || iv(16) || tag(16) || ciphertext. A fresh salt and IV are
// drawn per call, so encrypting the same value twice yields different blobs.
func (c *Codec) Encrypt(plaintext, userID string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	gcm, err := c.newGCM(salt, userID)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	// Seal appends the tag; move it ahead of the ciphertext so the blob
	// header is fixed-size.
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, minBlobSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. It fails atomically with ErrIntegrity on bad
// base64, a short blob, or tag verification failure; it never returns
// partial plaintext.
func (c *Codec) Decrypt(blob, userID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", ErrIntegrity)
	}
	if len(raw) < minBlobSize {
		return "", fmt.Errorf("%w: blob too short", ErrIntegrity)
	}

	salt := raw[:saltSize]
	iv := raw[saltSize : saltSize+ivSize]
	tag := raw[saltSize+ivSize : minBlobSize]
	ciphertext := raw[minBlobSize:]

	gcm, err := c.newGCM(salt, userID)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrIntegrity)
	}
	return string(plaintext), nil
}

func (c *Codec) newGCM(salt []byte, userID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.deriveKey(salt, userID))
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}
	return gcm, nil
}
