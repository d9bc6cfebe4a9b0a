package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAPIKey is a user's stored vendor credential. The plaintext key is
// shown once at creation; only the encrypted blob and a masked preview
// are stored. At most one active record exists per
// (user_id, vendor_id, service_id) tuple, where a NULL service_id denotes
// a vendor-level credential.
type UserAPIKey struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	UserID        string     `db:"user_id"        json:"user_id"`
	VendorID      string     `db:"vendor_id"      json:"vendor_id"`
	ServiceID     *string    `db:"service_id"     json:"service_id,omitempty"`
	EncryptedBlob string     `db:"encrypted_blob" json:"-"`
	KeyPreview    string     `db:"key_preview"    json:"key_preview"`
	DisplayName   *string    `db:"display_name"   json:"display_name,omitempty"`
	IsActive      bool       `db:"is_active"      json:"is_active"`
	LastUsedAt    *time.Time `db:"last_used_at"   json:"last_used_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}
