package keyformat_test

import (
	"strings"
	"testing"

	"github.com/anikdutta/credvault/pkg/keyformat"
	"github.com/stretchr/testify/assert"
)

func TestValidate_OpenAI(t *testing.T) {
	v := keyformat.NewValidator()

	tests := []struct {
		name   string
		key    string
		valid  bool
		reason string
	}{
		{"valid key", "sk-test1234567890abc", true, ""},
		{"missing prefix", "not-a-key", false, `key must start with "sk-"`},
		{"valid short key", "sk-test1234567890", true, ""},
		{"prefix only", "sk-short", false, "key must be at least 12 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate("openai", tt.key)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.Equal(t, tt.reason, res.Reason)
			}
		})
	}
}

func TestValidate_Anthropic(t *testing.T) {
	v := keyformat.NewValidator()

	res := v.Validate("anthropic", "sk-ant-api03-"+strings.Repeat("a", 40))
	assert.True(t, res.Valid)

	res = v.Validate("anthropic", "sk-wrongprefix1234567890")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Reason, "sk-ant-")
}

func TestValidate_Hex(t *testing.T) {
	v := keyformat.NewValidator()

	res := v.Validate("elevenlabs", strings.Repeat("ab01", 8))
	assert.True(t, res.Valid)

	res = v.Validate("elevenlabs", strings.Repeat("zz01", 8))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Reason, "hex")

	res = v.Validate("elevenlabs", "ab01")
	assert.False(t, res.Valid)
}

func TestValidate_UnknownVendorFallback(t *testing.T) {
	v := keyformat.NewValidator()

	res := v.Validate("some-new-vendor", "valid_key-1234")
	assert.True(t, res.Valid)

	res = v.Validate("some-new-vendor", "has spaces!")
	assert.False(t, res.Valid)

	res = v.Validate("some-new-vendor", "tiny")
	assert.False(t, res.Valid)
}

func TestRegister_NewVendor(t *testing.T) {
	v := keyformat.NewValidator()
	v.Register("acme", keyformat.PrefixRule{Prefix: "acme_", MinLen: 12})

	assert.True(t, v.Validate("acme", "acme_1234567890").Valid)
	assert.False(t, v.Validate("acme", "other_1234567890").Valid)

	// Registering one vendor leaves existing rules untouched.
	assert.True(t, v.Validate("openai", "sk-test1234567890abc").Valid)
}

func TestValidate_LengthRange(t *testing.T) {
	v := keyformat.NewValidator()

	assert.True(t, v.Validate("google", strings.Repeat("g", 39)).Valid)
	assert.False(t, v.Validate("google", "short").Valid)
	assert.False(t, v.Validate("google", strings.Repeat("g", 300)).Valid)
}
