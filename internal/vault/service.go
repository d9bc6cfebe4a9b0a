// Package vault is the credential vault service layer: lifecycle management
// of encrypted vendor credentials on top of the envelope codec, the format
// validator, the relational store, and the per-vendor probe registry.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anikdutta/credvault/internal/cache"
	"github.com/anikdutta/credvault/internal/envelope"
	"github.com/anikdutta/credvault/internal/probe"
	"github.com/anikdutta/credvault/internal/store"
	"github.com/anikdutta/credvault/pkg/keyformat"
	"github.com/anikdutta/credvault/pkg/models"
	"github.com/google/uuid"
)

// catalogTTL bounds staleness of cached vendor catalog listings.
const catalogTTL = 5 * time.Minute

// Service composes the vault operations. All methods are safe for
// concurrent use; the backing store is the only shared mutable state.
type Service struct {
	store  store.Store
	codec  *envelope.Codec
	format *keyformat.Validator
	probes *probe.Registry
	cache  cache.Cache
}

// NewService creates the vault service. cache may be nil, in which case
// catalog reads always hit the store.
func NewService(st store.Store, codec *envelope.Codec, format *keyformat.Validator, probes *probe.Registry, ca cache.Cache) *Service {
	return &Service{
		store:  st,
		codec:  codec,
		format: format,
		probes: probes,
		cache:  ca,
	}
}

// KeyMetadata is the listing view of a stored credential. It never carries
// the encrypted blob or any decrypted value.
type KeyMetadata struct {
	ID          uuid.UUID  `json:"id"`
	VendorID    string     `json:"vendor_id"`
	ServiceID   *string    `json:"service_id,omitempty"`
	KeyPreview  string     `json:"key_preview"`
	DisplayName *string    `json:"display_name,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func metadataOf(k *models.UserAPIKey) KeyMetadata {
	return KeyMetadata{
		ID:          k.ID,
		VendorID:    k.VendorID,
		ServiceID:   k.ServiceID,
		KeyPreview:  k.KeyPreview,
		DisplayName: k.DisplayName,
		IsActive:    k.IsActive,
		LastUsedAt:  k.LastUsedAt,
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}

// --- Vendor catalog ---

// ListVendors returns the active vendor catalog, cached for a short TTL.
func (s *Service) ListVendors(ctx context.Context) ([]*models.Vendor, error) {
	var vendors []*models.Vendor
	if s.cachedGet(ctx, cache.VendorsKey(), &vendors) {
		return vendors, nil
	}

	vendors, err := s.store.ListVendors(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}

	s.cachedSet(ctx, cache.VendorsKey(), vendors)
	return vendors, nil
}

// ListVendorServices returns the active services under a vendor.
func (s *Service) ListVendorServices(ctx context.Context, vendorID string) ([]*models.VendorService, error) {
	var services []*models.VendorService
	if s.cachedGet(ctx, cache.VendorServicesKey(vendorID), &services) {
		return services, nil
	}

	services, err := s.store.ListVendorServices(ctx, vendorID, false)
	if err != nil {
		return nil, fmt.Errorf("listing vendor services: %w", err)
	}

	s.cachedSet(ctx, cache.VendorServicesKey(vendorID), services)
	return services, nil
}

func (s *Service) cachedGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Service) cachedSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, catalogTTL); err != nil {
		slog.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

// --- Credential lifecycle ---

// CreateKeyParams are the inputs to CreateKey. ServiceID may be nil for a
// vendor-level credential.
type CreateKeyParams struct {
	UserID      string
	VendorID    string
	ServiceID   *string
	Key         string
	DisplayName *string
}

// CreateKey validates, encrypts, and stores a new credential. The
// plaintext never leaves this call: only the blob and a masked preview
// are persisted.
func (s *Service) CreateKey(ctx context.Context, p CreateKeyParams) (*KeyMetadata, error) {
	if res := s.format.Validate(p.VendorID, p.Key); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidation, res.Reason)
	}

	vendor, err := s.store.GetVendor(ctx, p.VendorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: vendor %q", ErrNotFound, p.VendorID)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up vendor: %w", err)
	}
	if !vendor.IsActive {
		return nil, fmt.Errorf("%w: vendor %q is inactive", ErrNotFound, p.VendorID)
	}

	if p.ServiceID != nil {
		svc, err := s.store.GetVendorService(ctx, *p.ServiceID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: service %q", ErrNotFound, *p.ServiceID)
		}
		if err != nil {
			return nil, fmt.Errorf("looking up vendor service: %w", err)
		}
		if svc.VendorID != p.VendorID || !svc.IsActive {
			return nil, fmt.Errorf("%w: service %q", ErrNotFound, *p.ServiceID)
		}
	}

	blob, err := s.codec.Encrypt(p.Key, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("encrypting credential: %w", err)
	}

	now := time.Now().UTC()
	record := &models.UserAPIKey{
		ID:            uuid.New(),
		UserID:        p.UserID,
		VendorID:      p.VendorID,
		ServiceID:     p.ServiceID,
		EncryptedBlob: blob,
		KeyPreview:    envelope.Preview(p.Key),
		DisplayName:   p.DisplayName,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateUserAPIKey(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("storing credential: %w", err)
	}

	meta := metadataOf(record)
	return &meta, nil
}

// ListUserKeys returns metadata for all of a user's stored credentials.
func (s *Service) ListUserKeys(ctx context.Context, userID string) ([]KeyMetadata, error) {
	records, err := s.store.ListUserAPIKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user keys: %w", err)
	}

	metas := make([]KeyMetadata, 0, len(records))
	for _, r := range records {
		metas = append(metas, metadataOf(r))
	}
	return metas, nil
}

// UpdateKeyParams is a partial patch. A non-nil Key rotates the stored
// credential (re-validate, re-encrypt, new preview); DisplayName and
// IsActive are metadata-only and touch no cryptography.
type UpdateKeyParams struct {
	Key         *string
	DisplayName *string
	IsActive    *bool
}

// UpdateKey applies a patch to an existing record owned by userID.
func (s *Service) UpdateKey(ctx context.Context, userID string, id uuid.UUID, p UpdateKeyParams) error {
	var opts []store.KeyUpdateOption

	if p.Key != nil {
		existing, err := s.store.GetUserAPIKey(ctx, userID, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("looking up key: %w", err)
		}

		if res := s.format.Validate(existing.VendorID, *p.Key); !res.Valid {
			return fmt.Errorf("%w: %s", ErrValidation, res.Reason)
		}

		blob, err := s.codec.Encrypt(*p.Key, userID)
		if err != nil {
			return fmt.Errorf("encrypting credential: %w", err)
		}
		opts = append(opts, store.WithEncryptedBlob(blob, envelope.Preview(*p.Key)))
	}

	if p.DisplayName != nil {
		opts = append(opts, store.WithDisplayName(*p.DisplayName))
	}
	if p.IsActive != nil {
		opts = append(opts, store.WithIsActive(*p.IsActive))
	}

	if len(opts) == 0 {
		return nil
	}

	if err := s.store.UpdateUserAPIKey(ctx, userID, id, opts...); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("updating key: %w", err)
	}
	return nil
}

// DeleteKey hard-deletes a record. Deleting an absent record is an error,
// not a no-op: a second delete of the same id signals a client bug.
func (s *Service) DeleteKey(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.store.DeleteUserAPIKey(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	return nil
}

// --- Decrypt-for-use ---

// GetDecryptedKey returns the plaintext of the best-matching active
// credential for (userID, vendorID, serviceID): a service-scoped record
// outranks a vendor-level one. found is false, with no error, when no
// active record matches. On success the last_used_at timestamp is updated
// in the background; that update is telemetry and its failure never
// affects the primary call.
func (s *Service) GetDecryptedKey(ctx context.Context, userID, vendorID string, serviceID *string) (key string, found bool, err error) {
	record, err := s.store.FindBestMatch(ctx, userID, vendorID, serviceID)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("finding credential: %w", err)
	}

	plaintext, err := s.codec.Decrypt(record.EncryptedBlob, userID)
	if err != nil {
		slog.Error("credential decrypt failed", "key_id", record.ID, "vendor_id", record.VendorID)
		return "", false, err
	}

	go func(id uuid.UUID) {
		if err := s.store.UpdateKeyLastUsed(context.Background(), id); err != nil {
			slog.Warn("last_used_at update failed", "key_id", id, "error", err)
		}
	}(record.ID)

	return plaintext, true, nil
}

// --- Live vendor test ---

// Test stages, so callers can tell a corrupted stored credential apart
// from a briefly unreachable vendor.
const (
	StageDecrypt = "decrypt"
	StageProbe   = "probe"
)

// TestResult reports the outcome of a live credential check.
type TestResult struct {
	Success bool   `json:"success"`
	Stage   string `json:"stage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TestKey decrypts the record and dispatches to the vendor's probe. Store
// lookup failures are returned as errors; decrypt and probe failures are
// reported in the result, tagged with the stage that failed.
func (s *Service) TestKey(ctx context.Context, userID string, id uuid.UUID) (*TestResult, error) {
	record, err := s.store.GetUserAPIKey(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up key: %w", err)
	}

	plaintext, err := s.codec.Decrypt(record.EncryptedBlob, userID)
	if err != nil {
		slog.Error("credential decrypt failed", "key_id", record.ID, "vendor_id", record.VendorID)
		return &TestResult{Stage: StageDecrypt, Error: "stored credential could not be decrypted"}, nil
	}

	prober, err := s.probes.Lookup(record.VendorID)
	if err != nil {
		return &TestResult{Stage: StageProbe, Error: err.Error()}, nil
	}

	if err := prober.Check(ctx, plaintext); err != nil {
		return &TestResult{Stage: StageProbe, Error: err.Error()}, nil
	}

	return &TestResult{Success: true}, nil
}
