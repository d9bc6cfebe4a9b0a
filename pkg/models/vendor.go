// Package models contains shared data models used across the credvault codebase.
package models

import "time"

// Vendor is an external API provider users can register credentials for.
// The ID is a stable slug (e.g. "openai") and never changes once published.
type Vendor struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	AuthType  AuthType  `db:"auth_type"  json:"auth_type"`
	BaseURL   *string   `db:"base_url"   json:"base_url,omitempty"`
	IsActive  bool      `db:"is_active"  json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AuthType describes how a vendor expects credentials to be presented.
type AuthType string

const (
	AuthTypeAPIKey      AuthType = "api_key"
	AuthTypeOAuth       AuthType = "oauth"
	AuthTypeBearerToken AuthType = "bearer_token"
)

// VendorService is an optional finer-grained scope under a vendor,
// e.g. distinct endpoints of one provider. Many services per vendor.
type VendorService struct {
	ID          string    `db:"id"           json:"id"`
	VendorID    string    `db:"vendor_id"    json:"vendor_id"`
	ServiceName string    `db:"service_name" json:"service_name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	IsActive    bool      `db:"is_active"    json:"is_active"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}
