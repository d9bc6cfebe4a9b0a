// Package storetest provides a function-field mock of store.Store for
// testing service-layer code without a database.
package storetest

import (
	"context"

	"github.com/anikdutta/credvault/internal/store"
	"github.com/anikdutta/credvault/pkg/models"
	"github.com/google/uuid"
)

// MockStore satisfies store.Store. Unset functions return zero values so
// tests only stub what they exercise.
type MockStore struct {
	PingFunc               func(ctx context.Context) error
	ListVendorsFunc        func(ctx context.Context, includeInactive bool) ([]*models.Vendor, error)
	GetVendorFunc          func(ctx context.Context, id string) (*models.Vendor, error)
	ListVendorServicesFunc func(ctx context.Context, vendorID string, includeInactive bool) ([]*models.VendorService, error)
	GetVendorServiceFunc   func(ctx context.Context, id string) (*models.VendorService, error)

	CreateUserAPIKeyFunc  func(ctx context.Context, key *models.UserAPIKey) error
	ListUserAPIKeysFunc   func(ctx context.Context, userID string) ([]*models.UserAPIKey, error)
	GetUserAPIKeyFunc     func(ctx context.Context, userID string, id uuid.UUID) (*models.UserAPIKey, error)
	UpdateUserAPIKeyFunc  func(ctx context.Context, userID string, id uuid.UUID, opts ...store.KeyUpdateOption) error
	DeleteUserAPIKeyFunc  func(ctx context.Context, userID string, id uuid.UUID) error
	FindBestMatchFunc     func(ctx context.Context, userID, vendorID string, serviceID *string) (*models.UserAPIKey, error)
	UpdateKeyLastUsedFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockStore) ListVendors(ctx context.Context, includeInactive bool) ([]*models.Vendor, error) {
	if m.ListVendorsFunc != nil {
		return m.ListVendorsFunc(ctx, includeInactive)
	}
	return nil, nil
}

func (m *MockStore) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	if m.GetVendorFunc != nil {
		return m.GetVendorFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) ListVendorServices(ctx context.Context, vendorID string, includeInactive bool) ([]*models.VendorService, error) {
	if m.ListVendorServicesFunc != nil {
		return m.ListVendorServicesFunc(ctx, vendorID, includeInactive)
	}
	return nil, nil
}

func (m *MockStore) GetVendorService(ctx context.Context, id string) (*models.VendorService, error) {
	if m.GetVendorServiceFunc != nil {
		return m.GetVendorServiceFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) CreateUserAPIKey(ctx context.Context, key *models.UserAPIKey) error {
	if m.CreateUserAPIKeyFunc != nil {
		return m.CreateUserAPIKeyFunc(ctx, key)
	}
	return nil
}

func (m *MockStore) ListUserAPIKeys(ctx context.Context, userID string) ([]*models.UserAPIKey, error) {
	if m.ListUserAPIKeysFunc != nil {
		return m.ListUserAPIKeysFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockStore) GetUserAPIKey(ctx context.Context, userID string, id uuid.UUID) (*models.UserAPIKey, error) {
	if m.GetUserAPIKeyFunc != nil {
		return m.GetUserAPIKeyFunc(ctx, userID, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) UpdateUserAPIKey(ctx context.Context, userID string, id uuid.UUID, opts ...store.KeyUpdateOption) error {
	if m.UpdateUserAPIKeyFunc != nil {
		return m.UpdateUserAPIKeyFunc(ctx, userID, id, opts...)
	}
	return nil
}

func (m *MockStore) DeleteUserAPIKey(ctx context.Context, userID string, id uuid.UUID) error {
	if m.DeleteUserAPIKeyFunc != nil {
		return m.DeleteUserAPIKeyFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockStore) FindBestMatch(ctx context.Context, userID, vendorID string, serviceID *string) (*models.UserAPIKey, error) {
	if m.FindBestMatchFunc != nil {
		return m.FindBestMatchFunc(ctx, userID, vendorID, serviceID)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) UpdateKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	if m.UpdateKeyLastUsedFunc != nil {
		return m.UpdateKeyLastUsedFunc(ctx, id)
	}
	return nil
}

var _ store.Store = (*MockStore)(nil)
