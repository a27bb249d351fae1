// Package projects implements the project lifecycle and the tenant ownership
// check every project-scoped resource relies on.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/models"
	"github.com/wolfeidau/teamhub/internal/store"
	"github.com/wolfeidau/teamhub/internal/telemetry"
)

// PlanResolver resolves the billing plan of an organization.
type PlanResolver interface {
	ResolvePlan(ctx context.Context, orgID string) (*models.BillingPlan, error)
}

// MemberResolver resolves a member within an organization.
type MemberResolver interface {
	Get(ctx context.Context, orgID, memberID string) (*models.Member, error)
}

type CreateRequest struct {
	Name        string
	Description string
}

// UpdateRequest carries the editable project fields. Nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
}

type Service struct {
	projects store.ProjectStore
	plans    PlanResolver
	members  MemberResolver
	now      func() time.Time
}

func NewService(projects store.ProjectStore, plans PlanResolver, members MemberResolver) *Service {
	return &Service{
		projects: projects,
		plans:    plans,
		members:  members,
		now:      time.Now,
	}
}

// Create adds a project owned by orgID with userID as creator and first member.
// Like member invites, the quota check and insert are not atomic.
func (s *Service) Create(ctx context.Context, orgID, userID string, req CreateRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.BadRequestf("Project name is required")
	}

	plan, err := s.plans.ResolvePlan(ctx, orgID)
	if err != nil {
		return nil, err
	}

	count, err := s.projects.CountByOrg(ctx, orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	if count >= int64(plan.MaxProjects) {
		telemetry.GetMetrics().RecordQuotaRejection(ctx, "projects")
		return nil, apperr.Forbiddenf("Project limit reached for current billing plan. Max: %d", plan.MaxProjects)
	}

	projectID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}

	now := s.now().UTC()
	project := &models.Project{
		ProjectID:   projectID.String(),
		OrgID:       orgID,
		Name:        name,
		Description: req.Description,
		Status:      models.ProjectStatusActive,
		MemberIDs:   []string{userID},
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	log.Info().Str("org_id", orgID).Str("project_id", project.ProjectID).Msg("Project created")

	return project, nil
}

// Get returns a project owned by orgID. This is the tenant isolation boundary for
// projects and everything scoped to them.
func (s *Service) Get(ctx context.Context, orgID, projectID string) (*models.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, apperr.NotFoundf("Project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.OrgID != orgID {
		return nil, apperr.Forbiddenf("Access denied to this project")
	}

	return project, nil
}

func (s *Service) List(ctx context.Context, orgID string, page store.Page) ([]*models.Project, error) {
	projects, err := s.projects.ListByOrg(ctx, orgID, nil, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Count(ctx context.Context, orgID string) (int64, error) {
	count, err := s.projects.CountByOrg(ctx, orgID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// IDs returns the ids of the organization's projects, capped at store.MaxProjectIDs.
func (s *Service) IDs(ctx context.Context, orgID string) ([]string, error) {
	ids, err := s.projects.ListIDs(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project ids: %w", err)
	}
	return ids, nil
}

// Update changes the name and/or description of a project.
func (s *Service) Update(ctx context.Context, orgID, projectID string, req UpdateRequest) (*models.Project, error) {
	if _, err := s.Get(ctx, orgID, projectID); err != nil {
		return nil, err
	}

	patch := store.ProjectPatch{Description: req.Description}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.BadRequestf("Project name cannot be empty")
		}
		patch.Name = &name
	}

	if err := s.apply(ctx, projectID, patch); err != nil {
		return nil, err
	}

	return s.Get(ctx, orgID, projectID)
}

// Delete soft-deletes a project.
func (s *Service) Delete(ctx context.Context, orgID, projectID string) error {
	if _, err := s.Get(ctx, orgID, projectID); err != nil {
		return err
	}

	if err := s.projects.SoftDelete(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return apperr.NotFoundf("Project not found")
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	log.Info().Str("org_id", orgID).Str("project_id", projectID).Msg("Project deleted")

	return nil
}

// Archive moves an active project to ARCHIVED. Archiving an archived project is rejected.
func (s *Service) Archive(ctx context.Context, orgID, projectID string) (*models.Project, error) {
	project, err := s.Get(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}

	if project.IsArchived() {
		return nil, apperr.BadRequestf("Project is already archived")
	}

	status := models.ProjectStatusArchived
	if err := s.apply(ctx, projectID, store.ProjectPatch{Status: &status}); err != nil {
		return nil, err
	}

	return s.Get(ctx, orgID, projectID)
}

// Unarchive moves an archived project back to ACTIVE. Unarchiving an active project is rejected.
func (s *Service) Unarchive(ctx context.Context, orgID, projectID string) (*models.Project, error) {
	project, err := s.Get(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsArchived() {
		return nil, apperr.BadRequestf("Project is not archived")
	}

	status := models.ProjectStatusActive
	if err := s.apply(ctx, projectID, store.ProjectPatch{Status: &status}); err != nil {
		return nil, err
	}

	return s.Get(ctx, orgID, projectID)
}

// AddMember grants memberID access to the project. The member must belong to orgID.
func (s *Service) AddMember(ctx context.Context, orgID, projectID, memberID string) (*models.Project, error) {
	if _, err := s.Get(ctx, orgID, projectID); err != nil {
		return nil, err
	}

	if _, err := s.members.Get(ctx, orgID, memberID); err != nil {
		return nil, err
	}

	if err := s.projects.AddMember(ctx, projectID, memberID); err != nil {
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}

	return s.Get(ctx, orgID, projectID)
}

// RemoveMember revokes memberID's access to the project. The creator keeps access.
func (s *Service) RemoveMember(ctx context.Context, orgID, projectID, memberID string) (*models.Project, error) {
	project, err := s.Get(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}

	if memberID == project.CreatedBy {
		return nil, apperr.BadRequestf("Cannot remove the project creator")
	}

	if !project.HasMember(memberID) {
		return nil, apperr.NotFoundf("Member is not part of this project")
	}

	if err := s.projects.RemoveMember(ctx, projectID, memberID); err != nil {
		return nil, fmt.Errorf("failed to remove project member: %w", err)
	}

	return s.Get(ctx, orgID, projectID)
}

func (s *Service) apply(ctx context.Context, projectID string, patch store.ProjectPatch) error {
	if err := s.projects.Update(ctx, projectID, patch); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return apperr.NotFoundf("Project not found")
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}
