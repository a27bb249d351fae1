package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for project store operations
var (
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectStore defines the interface for project storage operations.
// Soft-deleted projects are invisible to every read.
type ProjectStore interface {
	// Create inserts a project.
	Create(ctx context.Context, project *models.Project) error

	// Get retrieves a project by ID regardless of organization.
	// Returns ErrProjectNotFound if the project doesn't exist or was deleted.
	Get(ctx context.Context, projectID string) (*models.Project, error)

	// ListByOrg returns an organization's projects, newest first. A nil status matches any status.
	ListByOrg(ctx context.Context, orgID string, status *models.ProjectStatus, page Page) ([]*models.Project, error)

	// ListArchived returns an organization's archived projects, most recently updated first.
	ListArchived(ctx context.Context, orgID string, page Page) ([]*models.Project, error)

	// CountByOrg counts an organization's projects. A nil status matches any status.
	CountByOrg(ctx context.Context, orgID string, status *models.ProjectStatus) (int64, error)

	// ListIDs returns up to MaxProjectIDs project IDs of an organization.
	ListIDs(ctx context.Context, orgID string) ([]string, error)

	// CountByMember returns, per member ID, how many of an organization's projects list that member.
	CountByMember(ctx context.Context, orgID string) (map[string]int64, error)

	// Update applies a partial update and bumps UpdatedAt.
	// Returns ErrProjectNotFound if the project doesn't exist or was deleted.
	Update(ctx context.Context, projectID string, patch ProjectPatch) error

	// AddMember appends memberID to the project's member set if absent.
	AddMember(ctx context.Context, projectID, memberID string) error

	// RemoveMember drops memberID from the project's member set.
	RemoveMember(ctx context.Context, projectID, memberID string) error

	// SoftDelete marks a project as deleted.
	SoftDelete(ctx context.Context, projectID string) error
}
