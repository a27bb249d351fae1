package store

import (
	"context"
	"errors"
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for API key store operations
var (
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// APIKeyStore defines the interface for API key storage operations.
type APIKeyStore interface {
	// Create inserts a key.
	Create(ctx context.Context, key *models.APIKey) error

	// Get retrieves a key by ID, including revoked keys.
	Get(ctx context.Context, keyID string) (*models.APIKey, error)

	// GetByHash retrieves a key by the hash of its secret, including revoked keys.
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)

	// ListByOrg returns an organization's keys that have not been revoked, newest first.
	ListByOrg(ctx context.Context, orgID string) ([]*models.APIKey, error)

	// Revoke stamps RevokedAt on a key.
	Revoke(ctx context.Context, keyID string, at time.Time) error

	// TouchLastUsed stamps LastUsedAt on a key.
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
}
