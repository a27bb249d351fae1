package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// APIKeyStore implements store.APIKeyStore using PostgreSQL.
type APIKeyStore struct {
	pool *pgxpool.Pool
}

func NewAPIKeyStore(pool *pgxpool.Pool) *APIKeyStore {
	return &APIKeyStore{pool: pool}
}

const apiKeyColumns = `key_id, org_id, name, prefix, key_hash, created_by, created_at, last_used_at, revoked_at`

func (s *APIKeyStore) Create(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO api_keys (`+apiKeyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		key.KeyID,
		key.OrgID,
		key.Name,
		key.Prefix,
		key.KeyHash,
		key.CreatedBy,
		key.CreatedAt,
		key.LastUsedAt,
		key.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", mapPostgresError(err, nil))
	}
	return nil
}

func (s *APIKeyStore) Get(ctx context.Context, keyID string) (*models.APIKey, error) {
	return s.queryOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_id = $1`, keyID)
}

func (s *APIKeyStore) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	return s.queryOne(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, keyHash)
}

// ListByOrg returns unrevoked keys of an organization, newest first.
func (s *APIKeyStore) ListByOrg(ctx context.Context, orgID string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE org_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC, key_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []*models.APIKey{}
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api keys: %w", err)
	}

	return keys, nil
}

func (s *APIKeyStore) Revoke(ctx context.Context, keyID string, at time.Time) error {
	return s.stamp(ctx, `UPDATE api_keys SET revoked_at = $2 WHERE key_id = $1`, keyID, at)
}

func (s *APIKeyStore) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	return s.stamp(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE key_id = $1`, keyID, at)
}

func (s *APIKeyStore) stamp(ctx context.Context, query, keyID string, at time.Time) error {
	result, err := s.pool.Exec(ctx, query, keyID, at)
	if err != nil {
		return fmt.Errorf("failed to update api key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrAPIKeyNotFound
	}
	return nil
}

func (s *APIKeyStore) queryOne(ctx context.Context, query, arg string) (*models.APIKey, error) {
	key, err := scanAPIKey(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

func scanAPIKey(row pgx.Row) (*models.APIKey, error) {
	var key models.APIKey
	err := row.Scan(
		&key.KeyID,
		&key.OrgID,
		&key.Name,
		&key.Prefix,
		&key.KeyHash,
		&key.CreatedBy,
		&key.CreatedAt,
		&key.LastUsedAt,
		&key.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}
