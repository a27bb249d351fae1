package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// APIKeyStore implements store.APIKeyStore using in-memory storage.
type APIKeyStore struct {
	mu sync.RWMutex

	keys   map[string]*models.APIKey // key_id -> APIKey
	byHash map[string]string         // key_hash -> key_id
}

// NewAPIKeyStore creates a new in-memory API key store.
func NewAPIKeyStore() *APIKeyStore {
	return &APIKeyStore{
		keys:   make(map[string]*models.APIKey),
		byHash: make(map[string]string),
	}
}

// Create inserts a key.
func (s *APIKeyStore) Create(ctx context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *key
	s.keys[key.KeyID] = &clone
	s.byHash[key.KeyHash] = key.KeyID

	return nil
}

// Get retrieves a key by ID.
func (s *APIKeyStore) Get(ctx context.Context, keyID string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.keys[keyID]
	if !exists {
		return nil, store.ErrAPIKeyNotFound
	}

	clone := *key
	return &clone, nil
}

// GetByHash retrieves a key by the hash of its secret.
func (s *APIKeyStore) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	s.mu.RLock()
	keyID, exists := s.byHash[keyHash]
	s.mu.RUnlock()

	if !exists {
		return nil, store.ErrAPIKeyNotFound
	}

	return s.Get(ctx, keyID)
}

// ListByOrg returns unrevoked keys of an organization, newest first.
func (s *APIKeyStore) ListByOrg(ctx context.Context, orgID string) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.APIKey{}
	for _, key := range s.keys {
		if key.OrgID == orgID && !key.IsRevoked() {
			clone := *key
			result = append(result, &clone)
		}
	}

	slices.SortFunc(result, func(a, b *models.APIKey) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.KeyID, b.KeyID))
	})

	return result, nil
}

// Revoke stamps RevokedAt on a key.
func (s *APIKeyStore) Revoke(ctx context.Context, keyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := s.keys[keyID]
	if !exists {
		return store.ErrAPIKeyNotFound
	}

	key.RevokedAt = &at

	return nil
}

// TouchLastUsed stamps LastUsedAt on a key.
func (s *APIKeyStore) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := s.keys[keyID]
	if !exists {
		return store.ErrAPIKeyNotFound
	}

	key.LastUsedAt = &at

	return nil
}
