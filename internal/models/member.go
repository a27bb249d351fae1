package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a member's position in the organization role hierarchy.
type Role string

const (
	RoleViewer Role = "VIEWER"
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// ParseRole converts s into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleViewer, RoleMember, RoleAdmin, RoleOwner:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Member is a user's membership in an organization.
type Member struct {
	MemberID  string     `json:"id"`             // UUIDv7, or the creator's user id for the owner
	OrgID     string     `json:"organizationId"` // immutable after creation
	Email     string     `json:"email"`          // unique within the organization
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	InvitedBy string     `json:"invitedBy,omitempty"`
	InvitedAt time.Time  `json:"invitedAt"`
	JoinedAt  *time.Time `json:"joinedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`
}

// IsDeleted returns true if the member has been removed from the organization.
func (m *Member) IsDeleted() bool {
	return m.DeletedAt != nil
}
