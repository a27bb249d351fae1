package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for member store operations
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("member already exists")
)

// MemberStore defines the interface for organization membership storage.
// Removed members are soft-deleted and invisible to every read.
type MemberStore interface {
	// Create inserts a member.
	// Returns ErrMemberAlreadyExists if the ID, or the email within the organization, is taken.
	Create(ctx context.Context, member *models.Member) error

	// Get retrieves a member by ID regardless of organization.
	// Returns ErrMemberNotFound if the member doesn't exist or was removed.
	Get(ctx context.Context, memberID string) (*models.Member, error)

	// GetByEmail retrieves a member of orgID by email (case-insensitive).
	// Returns ErrMemberNotFound if there is no such member.
	GetByEmail(ctx context.Context, orgID, email string) (*models.Member, error)

	// ListByOrg returns the members of an organization, newest first.
	ListByOrg(ctx context.Context, orgID string, page Page) ([]*models.Member, error)

	// CountByOrg returns the number of members of an organization.
	CountByOrg(ctx context.Context, orgID string) (int64, error)

	// UpdateRole changes a member's role.
	// Returns ErrMemberNotFound if the member doesn't exist or was removed.
	UpdateRole(ctx context.Context, memberID string, role models.Role) error

	// SoftDelete marks a member as removed.
	// Returns ErrMemberNotFound if the member doesn't exist or was already removed.
	SoftDelete(ctx context.Context, memberID string) error
}
