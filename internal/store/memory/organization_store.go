package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing and local development - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[string]*models.Organization // org_id -> Organization
	members       *MemberStore                    // owner memberships written by CreateWithOwner
}

// NewOrganizationStore creates a new in-memory organization store. Owner
// memberships are written to members.
func NewOrganizationStore(members *MemberStore) *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[string]*models.Organization),
		members:       members,
	}
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	if s.slugTaken(org.Slug, org.OrgID) {
		return store.ErrOrganizationAlreadyExists
	}

	s.organizations[org.OrgID] = cloneOrganization(org)

	return nil
}

// CreateWithOwner creates an organization and its owner membership under both
// stores' locks, so either both are written or neither is.
func (s *OrganizationStore) CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.Member) error {
	if s.members == nil {
		return errors.New("organization store has no member store")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	if s.slugTaken(org.Slug, org.OrgID) {
		return store.ErrOrganizationAlreadyExists
	}

	s.members.mu.Lock()
	defer s.members.mu.Unlock()

	if err := s.members.checkInsert(owner); err != nil {
		return err
	}

	s.organizations[org.OrgID] = cloneOrganization(org)
	s.members.insert(owner)

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(org), nil
}

// GetBySlug retrieves an organization by slug.
func (s *OrganizationStore) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.organizations {
		if org.Slug == slug {
			return cloneOrganization(org), nil
		}
	}

	return nil, store.ErrOrganizationNotFound
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.organizations[org.OrgID]
	if !exists {
		return store.ErrOrganizationNotFound
	}
	if s.slugTaken(org.Slug, org.OrgID) {
		return store.ErrOrganizationAlreadyExists
	}

	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = time.Now()
	s.organizations[org.OrgID] = cloneOrganization(org)

	return nil
}

// slugTaken must be called with the lock held.
func (s *OrganizationStore) slugTaken(slug, exceptOrgID string) bool {
	for id, org := range s.organizations {
		if id != exceptOrgID && org.Slug == slug {
			return true
		}
	}
	return false
}

func cloneOrganization(org *models.Organization) *models.Organization {
	clone := *org
	clone.Settings = maps.Clone(org.Settings)
	return &clone
}
