package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/anikdutta/credvault/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Vendors ---

func (s *PostgresStore) ListVendors(ctx context.Context, includeInactive bool) ([]*models.Vendor, error) {
	query := `SELECT id, name, auth_type, base_url, is_active, created_at, updated_at
	          FROM vendors`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.AuthType, &v.BaseURL, &v.IsActive,
			&v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, &v)
	}
	return vendors, rows.Err()
}

func (s *PostgresStore) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	var v models.Vendor
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, auth_type, base_url, is_active, created_at, updated_at
		 FROM vendors WHERE id = $1`, id,
	).Scan(&v.ID, &v.Name, &v.AuthType, &v.BaseURL, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) ListVendorServices(ctx context.Context, vendorID string, includeInactive bool) ([]*models.VendorService, error) {
	query := `SELECT id, vendor_id, service_name, display_name, is_active, created_at, updated_at
	          FROM vendor_services WHERE vendor_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY service_name`

	rows, err := s.pool.Query(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor services: %w", err)
	}
	defer rows.Close()

	var services []*models.VendorService
	for rows.Next() {
		var vs models.VendorService
		if err := rows.Scan(&vs.ID, &vs.VendorID, &vs.ServiceName, &vs.DisplayName,
			&vs.IsActive, &vs.CreatedAt, &vs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor service: %w", err)
		}
		services = append(services, &vs)
	}
	return services, rows.Err()
}

func (s *PostgresStore) GetVendorService(ctx context.Context, id string) (*models.VendorService, error) {
	var vs models.VendorService
	err := s.pool.QueryRow(ctx,
		`SELECT id, vendor_id, service_name, display_name, is_active, created_at, updated_at
		 FROM vendor_services WHERE id = $1`, id,
	).Scan(&vs.ID, &vs.VendorID, &vs.ServiceName, &vs.DisplayName, &vs.IsActive,
		&vs.CreatedAt, &vs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor service: %w", err)
	}
	return &vs, nil
}

// --- User API Keys ---

func (s *PostgresStore) CreateUserAPIKey(ctx context.Context, key *models.UserAPIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_api_keys (id, user_id, vendor_id, service_id, encrypted_blob, key_preview, display_name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		key.ID, key.UserID, key.VendorID, key.ServiceID, key.EncryptedBlob,
		key.KeyPreview, key.DisplayName, key.IsActive, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUserAPIKeys(ctx context.Context, userID string) ([]*models.UserAPIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, vendor_id, service_id, encrypted_blob, key_preview, display_name, is_active, last_used_at, created_at, updated_at
		 FROM user_api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.UserAPIKey
	for rows.Next() {
		var k models.UserAPIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.VendorID, &k.ServiceID, &k.EncryptedBlob,
			&k.KeyPreview, &k.DisplayName, &k.IsActive, &k.LastUsedAt,
			&k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) GetUserAPIKey(ctx context.Context, userID string, id uuid.UUID) (*models.UserAPIKey, error) {
	var k models.UserAPIKey
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, vendor_id, service_id, encrypted_blob, key_preview, display_name, is_active, last_used_at, created_at, updated_at
		 FROM user_api_keys WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&k.ID, &k.UserID, &k.VendorID, &k.ServiceID, &k.EncryptedBlob,
		&k.KeyPreview, &k.DisplayName, &k.IsActive, &k.LastUsedAt,
		&k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user api key: %w", err)
	}
	return &k, nil
}

func (s *PostgresStore) UpdateUserAPIKey(ctx context.Context, userID string, id uuid.UUID, opts ...KeyUpdateOption) error {
	params := NewKeyUpdate(opts...)

	query := `UPDATE user_api_keys SET updated_at = NOW()`
	args := []any{id, userID}
	argIdx := 3

	if params.EncryptedBlob != nil {
		query += fmt.Sprintf(", encrypted_blob = $%d, key_preview = $%d", argIdx, argIdx+1)
		args = append(args, *params.EncryptedBlob, *params.KeyPreview)
		argIdx += 2
	}
	if params.DisplayName != nil {
		query += fmt.Sprintf(", display_name = $%d", argIdx)
		args = append(args, *params.DisplayName)
		argIdx++
	}
	if params.IsActive != nil {
		query += fmt.Sprintf(", is_active = $%d", argIdx)
		args = append(args, *params.IsActive)
		argIdx++
	}

	query += " WHERE id = $1 AND user_id = $2"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUserAPIKey(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_api_keys WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete user api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindBestMatch returns the active key for (userID, vendorID, serviceID).
// When serviceID is given, a service-scoped key outranks a vendor-level
// one; callers rely on that ordering.
func (s *PostgresStore) FindBestMatch(ctx context.Context, userID, vendorID string, serviceID *string) (*models.UserAPIKey, error) {
	var row pgx.Row
	if serviceID != nil {
		row = s.pool.QueryRow(ctx,
			`SELECT id, user_id, vendor_id, service_id, encrypted_blob, key_preview, display_name, is_active, last_used_at, created_at, updated_at
			 FROM user_api_keys
			 WHERE user_id = $1 AND vendor_id = $2 AND is_active = TRUE
			   AND (service_id = $3 OR service_id IS NULL)
			 ORDER BY service_id NULLS LAST
			 LIMIT 1`, userID, vendorID, *serviceID)
	} else {
		row = s.pool.QueryRow(ctx,
			`SELECT id, user_id, vendor_id, service_id, encrypted_blob, key_preview, display_name, is_active, last_used_at, created_at, updated_at
			 FROM user_api_keys
			 WHERE user_id = $1 AND vendor_id = $2 AND is_active = TRUE AND service_id IS NULL
			 LIMIT 1`, userID, vendorID)
	}

	var k models.UserAPIKey
	err := row.Scan(&k.ID, &k.UserID, &k.VendorID, &k.ServiceID, &k.EncryptedBlob,
		&k.KeyPreview, &k.DisplayName, &k.IsActive, &k.LastUsedAt,
		&k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find best match: %w", err)
	}
	return &k, nil
}

func (s *PostgresStore) UpdateKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE user_api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update key last used: %w", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
