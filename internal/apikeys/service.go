// Package apikeys issues and verifies organization-scoped API keys.
//
// Secrets are shown once at creation; only their SHA256 hash is persisted.
package apikeys

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

const (
	secretBytes   = 32
	displayPrefix = 12
)

var errInvalidKey = errors.New("invalid api key")

var _ auth.APIKeyAuthenticator = (*Service)(nil)

type Service struct {
	keys store.APIKeyStore
	now  func() time.Time
}

func NewService(keys store.APIKeyStore) *Service {
	return &Service{keys: keys, now: time.Now}
}

// Create mints a key and returns it with its plaintext secret.
func (s *Service) Create(ctx context.Context, orgID, userID, name string) (*models.APIKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", apperr.Validationf("API key name is required")
	}

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("failed to generate api key secret: %w", err)
	}
	secret := auth.APIKeyPrefix + base58.Encode(raw)

	keyID, err := uuid.NewV7()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate api key ID: %w", err)
	}

	key := &models.APIKey{
		KeyID:     keyID.String(),
		OrgID:     orgID,
		Name:      name,
		Prefix:    secret[:displayPrefix],
		KeyHash:   HashSecret(secret),
		CreatedBy: userID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", fmt.Errorf("failed to store api key: %w", err)
	}

	log.Info().
		Str("org_id", orgID).
		Str("key_id", key.KeyID).
		Str("prefix", key.Prefix).
		Msg("API key created")

	return key, secret, nil
}

func (s *Service) List(ctx context.Context, orgID string) ([]*models.APIKey, error) {
	keys, err := s.keys.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

func (s *Service) Get(ctx context.Context, orgID, keyID string) (*models.APIKey, error) {
	key, err := s.keys.Get(ctx, keyID)
	if err != nil {
		if errors.Is(err, store.ErrAPIKeyNotFound) {
			return nil, apperr.NotFoundf("API key not found")
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	if key.OrgID != orgID {
		return nil, apperr.Forbiddenf("Access denied to this API key")
	}
	return key, nil
}

func (s *Service) Revoke(ctx context.Context, orgID, keyID string) (*models.APIKey, error) {
	key, err := s.Get(ctx, orgID, keyID)
	if err != nil {
		return nil, err
	}
	if key.IsRevoked() {
		return nil, apperr.BadRequestf("API key is already revoked")
	}

	now := s.now().UTC()
	if err := s.keys.Revoke(ctx, keyID, now); err != nil {
		return nil, fmt.Errorf("failed to revoke api key: %w", err)
	}
	key.RevokedAt = &now

	log.Info().Str("org_id", orgID).Str("key_id", keyID).Msg("API key revoked")

	return key, nil
}

// Authenticate resolves a plaintext secret to the identity of the key's creator.
func (s *Service) Authenticate(ctx context.Context, secret string) (*auth.Identity, error) {
	if !strings.HasPrefix(secret, auth.APIKeyPrefix) {
		return nil, errInvalidKey
	}

	key, err := s.keys.GetByHash(ctx, HashSecret(secret))
	if err != nil {
		if errors.Is(err, store.ErrAPIKeyNotFound) {
			return nil, errInvalidKey
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if key.IsRevoked() {
		return nil, errInvalidKey
	}

	if err := s.keys.TouchLastUsed(ctx, key.KeyID, s.now().UTC()); err != nil {
		log.Warn().Err(err).Str("key_id", key.KeyID).Msg("failed to record api key usage")
	}

	return &auth.Identity{
		UserID: key.CreatedBy,
		OrgID:  key.OrgID,
	}, nil
}

// HashSecret returns the hex SHA256 digest stored for a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
