// Package probe performs live verification of stored vendor credentials.
// Each prober makes one bounded HTTP call to a cheap vendor endpoint
// (typically a models/list route) using that vendor's auth conventions.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Sentinel errors for probe failures. None of these imply anything about
// the stored ciphertext; they describe the vendor call only.
var (
	ErrInvalidCredential = errors.New("vendor rejected credential")
	ErrUnreachable       = errors.New("vendor unreachable")
	ErrTimeout           = errors.New("vendor probe timeout")
	ErrNoProber          = errors.New("no prober registered for vendor")
)

// Prober checks one vendor's credential against the live vendor API.
type Prober interface {
	// Name returns the vendor id this prober serves (e.g. "openai").
	Name() string
	// Check performs a bounded call with the decrypted credential.
	Check(ctx context.Context, credential string) error
}

// Registry maps vendor ids to probe strategies. New vendors register a
// prober without touching existing ones. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	probers map[string]Prober
}

func NewRegistry() *Registry {
	return &Registry{probers: make(map[string]Prober)}
}

// Register adds or replaces the prober for its vendor id.
func (r *Registry) Register(p Prober) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probers[p.Name()] = p
}

// Lookup returns the prober for vendorID, or ErrNoProber.
func (r *Registry) Lookup(vendorID string) (Prober, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.probers[vendorID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProber, vendorID)
	}
	return p, nil
}

// DefaultRegistry returns a Registry preloaded with the built-in vendor
// probers, all sharing one timeout-bounded HTTP client.
func DefaultRegistry(timeout time.Duration) *Registry {
	client := &http.Client{Timeout: timeout}
	r := NewRegistry()
	r.Register(NewOpenAIProber(client))
	r.Register(NewAnthropicProber(client))
	r.Register(NewBearerProber("openrouter", "https://openrouter.ai/api/v1/models", client))
	r.Register(NewBearerProber("deepgram", "https://api.deepgram.com/v1/projects", client))
	return r
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// checkStatus translates a vendor response code into a probe outcome.
// 401/403 mean the credential itself was rejected.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d", ErrInvalidCredential, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}
