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

// ProjectStore implements store.ProjectStore using in-memory storage.
type ProjectStore struct {
	mu sync.RWMutex

	projects map[string]*models.Project // project_id -> Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]*models.Project),
	}
}

// Create inserts a project.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[project.ProjectID] = cloneProject(project)

	return nil
}

// Get retrieves a live project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.live(projectID)
	if err != nil {
		return nil, err
	}

	return cloneProject(p), nil
}

// ListByOrg returns live projects of an organization, newest first.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID string, status *models.ProjectStatus, page store.Page) ([]*models.Project, error) {
	result := s.filter(orgID, status)

	slices.SortFunc(result, func(a, b *models.Project) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ProjectID, b.ProjectID))
	})

	return paginate(result, page), nil
}

// ListArchived returns archived projects of an organization, most recently updated first.
func (s *ProjectStore) ListArchived(ctx context.Context, orgID string, page store.Page) ([]*models.Project, error) {
	archived := models.ProjectStatusArchived
	result := s.filter(orgID, &archived)

	slices.SortFunc(result, func(a, b *models.Project) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ProjectID, b.ProjectID))
	})

	return paginate(result, page), nil
}

// CountByOrg counts live projects of an organization.
func (s *ProjectStore) CountByOrg(ctx context.Context, orgID string, status *models.ProjectStatus) (int64, error) {
	return int64(len(s.filter(orgID, status))), nil
}

// ListIDs returns up to store.MaxProjectIDs project IDs of an organization.
func (s *ProjectStore) ListIDs(ctx context.Context, orgID string) ([]string, error) {
	projects := s.filter(orgID, nil)

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ProjectID)
	}
	slices.Sort(ids)
	if len(ids) > store.MaxProjectIDs {
		ids = ids[:store.MaxProjectIDs]
	}

	return ids, nil
}

// CountByMember counts, per member, the organization's live projects listing them.
func (s *ProjectStore) CountByMember(ctx context.Context, orgID string) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, p := range s.filter(orgID, nil) {
		for _, memberID := range p.MemberIDs {
			counts[memberID]++
		}
	}
	return counts, nil
}

// Update applies a partial update to a live project.
func (s *ProjectStore) Update(ctx context.Context, projectID string, patch store.ProjectPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.live(projectID)
	if err != nil {
		return err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.ArchivedBy != nil {
		p.ArchivedBy = ptr(*patch.ArchivedBy)
	}
	if patch.ArchivedAt != nil {
		p.ArchivedAt = ptr(*patch.ArchivedAt)
	}
	if patch.RestoredBy != nil {
		p.RestoredBy = ptr(*patch.RestoredBy)
	}
	if patch.RestoredAt != nil {
		p.RestoredAt = ptr(*patch.RestoredAt)
	}
	p.UpdatedAt = time.Now()

	return nil
}

// AddMember appends memberID to the project's member set if absent.
func (s *ProjectStore) AddMember(ctx context.Context, projectID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.live(projectID)
	if err != nil {
		return err
	}

	if !p.HasMember(memberID) {
		p.MemberIDs = append(p.MemberIDs, memberID)
		p.UpdatedAt = time.Now()
	}

	return nil
}

// RemoveMember drops memberID from the project's member set.
func (s *ProjectStore) RemoveMember(ctx context.Context, projectID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.live(projectID)
	if err != nil {
		return err
	}

	p.MemberIDs = slices.DeleteFunc(p.MemberIDs, func(id string) bool { return id == memberID })
	p.UpdatedAt = time.Now()

	return nil
}

// SoftDelete marks a live project as deleted.
func (s *ProjectStore) SoftDelete(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.live(projectID)
	if err != nil {
		return err
	}

	now := time.Now()
	p.DeletedAt = &now
	p.UpdatedAt = now

	return nil
}

// live must be called with the lock held.
func (s *ProjectStore) live(projectID string) (*models.Project, error) {
	p, exists := s.projects[projectID]
	if !exists || p.DeletedAt != nil {
		return nil, store.ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectStore) filter(orgID string, status *models.ProjectStatus) []*models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Project
	for _, p := range s.projects {
		if p.OrgID != orgID || p.DeletedAt != nil {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		result = append(result, cloneProject(p))
	}
	return result
}

func cloneProject(p *models.Project) *models.Project {
	clone := *p
	clone.MemberIDs = slices.Clone(p.MemberIDs)
	return &clone
}

func ptr[T any](v T) *T {
	return &v
}
