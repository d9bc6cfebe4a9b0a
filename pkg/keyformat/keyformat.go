// Package keyformat performs syntactic validation of vendor API credentials.
// All checks are pure string functions with no side effects; nothing here
// touches the network, the store, or the crypto layer.
package keyformat

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is the outcome of validating a credential against a vendor rule.
// Reason is human-readable and safe to return to clients.
type Result struct {
	Valid  bool
	Reason string
}

// Rule validates a plaintext credential for one vendor.
type Rule interface {
	Validate(key string) Result
}

// Validator selects a per-vendor rule by vendor id. Vendors without a
// registered rule fall back to a generic charset check.
type Validator struct {
	rules map[string]Rule
}

// NewValidator returns a Validator preloaded with the built-in vendor rules.
func NewValidator() *Validator {
	v := &Validator{rules: make(map[string]Rule)}
	v.Register("openai", PrefixRule{Prefix: "sk-", MinLen: 12})
	v.Register("anthropic", PrefixRule{Prefix: "sk-ant-", MinLen: 24})
	v.Register("openrouter", PrefixRule{Prefix: "sk-or-", MinLen: 24})
	v.Register("elevenlabs", HexRule{Length: 32})
	v.Register("deepgram", HexRule{Length: 40})
	v.Register("google", LengthRule{Min: 20, Max: 256})
	return v
}

// Register adds or replaces the rule for a vendor id. Existing rules for
// other vendors are untouched.
func (v *Validator) Register(vendorID string, rule Rule) {
	v.rules[vendorID] = rule
}

// Validate checks key against the rule registered for vendorID, or the
// generic fallback rule when the vendor is unknown.
func (v *Validator) Validate(vendorID, key string) Result {
	if rule, ok := v.rules[vendorID]; ok {
		return rule.Validate(key)
	}
	return genericRule{}.Validate(key)
}

// PrefixRule requires a fixed prefix and a minimum total length.
type PrefixRule struct {
	Prefix string
	MinLen int
}

func (r PrefixRule) Validate(key string) Result {
	if !strings.HasPrefix(key, r.Prefix) {
		return Result{Reason: fmt.Sprintf("key must start with %q", r.Prefix)}
	}
	if len(key) < r.MinLen {
		return Result{Reason: fmt.Sprintf("key must be at least %d characters", r.MinLen)}
	}
	return Result{Valid: true}
}

// HexRule requires a fixed-width lowercase or uppercase hex string.
type HexRule struct {
	Length int
}

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

func (r HexRule) Validate(key string) Result {
	if len(key) != r.Length {
		return Result{Reason: fmt.Sprintf("key must be exactly %d hex characters", r.Length)}
	}
	if !hexPattern.MatchString(key) {
		return Result{Reason: "key must contain only hex characters"}
	}
	return Result{Valid: true}
}

// LengthRule requires the key length to fall within [Min, Max].
type LengthRule struct {
	Min int
	Max int
}

func (r LengthRule) Validate(key string) Result {
	if len(key) < r.Min || len(key) > r.Max {
		return Result{Reason: fmt.Sprintf("key must be between %d and %d characters", r.Min, r.Max)}
	}
	return Result{Valid: true}
}

// genericRule is the fallback for unknown vendors: alphanumeric plus
// '-' and '_', bounded length.
type genericRule struct{}

var genericPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func (genericRule) Validate(key string) Result {
	if len(key) < 8 || len(key) > 512 {
		return Result{Reason: "key must be between 8 and 512 characters"}
	}
	if !genericPattern.MatchString(key) {
		return Result{Reason: "key may only contain letters, digits, '-' and '_'"}
	}
	return Result{Valid: true}
}
