package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
)

// MemberStore implements store.MemberStore using in-memory storage.
type MemberStore struct {
	mu sync.RWMutex

	members map[string]*models.Member // member_id -> Member
}

// NewMemberStore creates a new in-memory member store.
func NewMemberStore() *MemberStore {
	return &MemberStore{
		members: make(map[string]*models.Member),
	}
}

// Create inserts a member, enforcing email uniqueness among live members of the organization.
func (s *MemberStore) Create(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInsert(member); err != nil {
		return err
	}
	s.insert(member)

	return nil
}

// checkInsert must be called with mu held.
func (s *MemberStore) checkInsert(member *models.Member) error {
	if _, exists := s.members[member.MemberID]; exists {
		return store.ErrMemberAlreadyExists
	}
	if s.findByEmail(member.OrgID, member.Email) != nil {
		return store.ErrMemberAlreadyExists
	}
	return nil
}

func (s *MemberStore) insert(member *models.Member) {
	clone := *member
	s.members[member.MemberID] = &clone
}

// Get retrieves a live member by ID.
func (s *MemberStore) Get(ctx context.Context, memberID string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.members[memberID]
	if !exists || m.IsDeleted() {
		return nil, store.ErrMemberNotFound
	}

	clone := *m
	return &clone, nil
}

// GetByEmail retrieves a live member of an organization by email.
func (s *MemberStore) GetByEmail(ctx context.Context, orgID, email string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.findByEmail(orgID, email)
	if m == nil {
		return nil, store.ErrMemberNotFound
	}

	clone := *m
	return &clone, nil
}

// ListByOrg returns live members of an organization, newest first.
func (s *MemberStore) ListByOrg(ctx context.Context, orgID string, page store.Page) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Member
	for _, m := range s.members {
		if m.OrgID == orgID && !m.IsDeleted() {
			clone := *m
			result = append(result, &clone)
		}
	}

	slices.SortFunc(result, func(a, b *models.Member) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.MemberID, b.MemberID))
	})

	return paginate(result, page), nil
}

// CountByOrg counts live members of an organization.
func (s *MemberStore) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.members {
		if m.OrgID == orgID && !m.IsDeleted() {
			count++
		}
	}

	return count, nil
}

// UpdateRole changes the role of a live member.
func (s *MemberStore) UpdateRole(ctx context.Context, memberID string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.members[memberID]
	if !exists || m.IsDeleted() {
		return store.ErrMemberNotFound
	}

	m.Role = role
	m.UpdatedAt = time.Now()

	return nil
}

// SoftDelete marks a live member as removed.
func (s *MemberStore) SoftDelete(ctx context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, exists := s.members[memberID]
	if !exists || m.IsDeleted() {
		return store.ErrMemberNotFound
	}

	now := time.Now()
	m.DeletedAt = &now
	m.UpdatedAt = now

	return nil
}

// findByEmail must be called with the lock held.
func (s *MemberStore) findByEmail(orgID, email string) *models.Member {
	for _, m := range s.members {
		if m.OrgID == orgID && !m.IsDeleted() && strings.EqualFold(m.Email, email) {
			return m
		}
	}
	return nil
}
