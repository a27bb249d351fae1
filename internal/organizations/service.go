// Package organizations manages tenants: signup, renames and settings.
package organizations

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
)

// Creator identifies the user signing up an organization.
type Creator struct {
	UserID string
	Email  string
	Name   string
}

type UpdateRequest struct {
	Name *string
}

type Service struct {
	orgs store.OrganizationStore
	now  func() time.Time
}

func NewService(orgs store.OrganizationStore) *Service {
	return &Service{
		orgs: orgs,
		now:  time.Now,
	}
}

// Create registers an organization on the free plan and makes the creator its OWNER.
// The owner's member id is the creator's user id, so a user can own only one
// organization. Nothing is persisted when either record is rejected.
func (s *Service) Create(ctx context.Context, creator Creator, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.BadRequestf("Organization name is required")
	}
	if creator.UserID == "" {
		return nil, apperr.BadRequestf("Creator user ID is required")
	}

	slug := models.Slugify(name)
	if slug == "" {
		return nil, apperr.BadRequestf("Organization name must contain letters or digits")
	}

	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	orgID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}

	now := s.now().UTC()
	org := &models.Organization{
		OrgID:         orgID.String(),
		Name:          name,
		Slug:          slug,
		BillingPlanID: models.DefaultPlanID,
		Settings:      map[string]any{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	owner := &models.Member{
		MemberID:  creator.UserID,
		OrgID:     org.OrgID,
		Email:     strings.ToLower(strings.TrimSpace(creator.Email)),
		Name:      creator.Name,
		Role:      models.RoleOwner,
		InvitedAt: now,
		JoinedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orgs.CreateWithOwner(ctx, org, owner); err != nil {
		switch {
		case errors.Is(err, store.ErrOrganizationAlreadyExists):
			return nil, apperr.Conflictf("An organization with a similar name already exists")
		case errors.Is(err, store.ErrMemberAlreadyExists):
			return nil, apperr.Conflictf("User already owns a membership with this ID")
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	log.Info().
		Str("org_id", org.OrgID).
		Str("slug", slug).
		Str("owner_id", creator.UserID).
		Msg("Organization created")

	return org, nil
}

func (s *Service) Get(ctx context.Context, orgID string) (*models.Organization, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, apperr.NotFoundf("Organization not found")
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// Update renames an organization, re-deriving its slug.
func (s *Service) Update(ctx context.Context, orgID string, req UpdateRequest) (*models.Organization, error) {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		slug := models.Slugify(name)
		if slug == "" {
			return nil, apperr.BadRequestf("Organization name must contain letters or digits")
		}
		if err := s.ensureSlugFree(ctx, slug, orgID); err != nil {
			return nil, err
		}
		org.Name = name
		org.Slug = slug
	}

	return org, s.save(ctx, org)
}

// UpdateSettings replaces the organization's settings.
func (s *Service) UpdateSettings(ctx context.Context, orgID string, settings map[string]any) (*models.Organization, error) {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = map[string]any{}
	}
	org.Settings = settings

	return org, s.save(ctx, org)
}

func (s *Service) save(ctx context.Context, org *models.Organization) error {
	if err := s.orgs.Update(ctx, org); err != nil {
		switch {
		case errors.Is(err, store.ErrOrganizationNotFound):
			return apperr.NotFoundf("Organization not found")
		case errors.Is(err, store.ErrOrganizationAlreadyExists):
			return apperr.Conflictf("An organization with a similar name already exists")
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, exceptOrgID string) error {
	existing, err := s.orgs.GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, store.ErrOrganizationNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up organization slug: %w", err)
	case existing.OrgID == exceptOrgID:
		return nil
	}
	return apperr.Conflictf("An organization with a similar name already exists")
}
