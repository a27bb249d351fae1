package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations are never deleted.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if the ID or slug is already taken.
	Create(ctx context.Context, org *models.Organization) error

	// CreateWithOwner creates an organization and its owner membership atomically.
	// Returns ErrOrganizationAlreadyExists or ErrMemberAlreadyExists, in which
	// case neither record is written.
	CreateWithOwner(ctx context.Context, org *models.Organization, owner *models.Member) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID string) (*models.Organization, error)

	// GetBySlug retrieves an organization by its slug.
	// Returns ErrOrganizationNotFound if no organization uses the slug.
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// Update replaces the name, slug, billing plan and settings of an organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist and
	// ErrOrganizationAlreadyExists if the new slug is taken.
	Update(ctx context.Context, org *models.Organization) error
}
