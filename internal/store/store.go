package store

import (
	"context"
	"errors"

	"github.com/anikdutta/credvault/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	ListVendors(ctx context.Context, includeInactive bool) ([]*models.Vendor, error)
	GetVendor(ctx context.Context, id string) (*models.Vendor, error)
	ListVendorServices(ctx context.Context, vendorID string, includeInactive bool) ([]*models.VendorService, error)
	GetVendorService(ctx context.Context, id string) (*models.VendorService, error)

	CreateUserAPIKey(ctx context.Context, key *models.UserAPIKey) error
	ListUserAPIKeys(ctx context.Context, userID string) ([]*models.UserAPIKey, error)
	GetUserAPIKey(ctx context.Context, userID string, id uuid.UUID) (*models.UserAPIKey, error)
	UpdateUserAPIKey(ctx context.Context, userID string, id uuid.UUID, opts ...KeyUpdateOption) error
	DeleteUserAPIKey(ctx context.Context, userID string, id uuid.UUID) error
	FindBestMatch(ctx context.Context, userID, vendorID string, serviceID *string) (*models.UserAPIKey, error)
	UpdateKeyLastUsed(ctx context.Context, id uuid.UUID) error
}

// KeyUpdate is the assembled set of fields a key update touches.
type KeyUpdate struct {
	EncryptedBlob *string
	KeyPreview    *string
	DisplayName   *string
	IsActive      *bool
}

// NewKeyUpdate applies opts and returns the resulting patch.
func NewKeyUpdate(opts ...KeyUpdateOption) KeyUpdate {
	var p KeyUpdate
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

type KeyUpdateOption func(*KeyUpdate)

// WithEncryptedBlob replaces the stored blob and its preview together.
// Rotation always updates both; a preview must never outlive its blob.
func WithEncryptedBlob(blob, preview string) KeyUpdateOption {
	return func(p *KeyUpdate) {
		p.EncryptedBlob = &blob
		p.KeyPreview = &preview
	}
}

func WithDisplayName(name string) KeyUpdateOption {
	return func(p *KeyUpdate) {
		p.DisplayName = &name
	}
}

func WithIsActive(active bool) KeyUpdateOption {
	return func(p *KeyUpdate) {
		p.IsActive = &active
	}
}
