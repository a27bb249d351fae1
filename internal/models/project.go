package models

import (
	"slices"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusArchived ProjectStatus = "ARCHIVED"
)

// Project groups tasks within an organization.
type Project struct {
	ProjectID   string        `json:"id"` // UUIDv7
	OrgID       string        `json:"organizationId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	MemberIDs   []string      `json:"memberIds"` // ordered, creator first
	CreatedBy   string        `json:"createdBy"`

	// Audit fields stamped by bulk archive/restore
	ArchivedBy *string    `json:"archivedBy,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	RestoredBy *string    `json:"restoredBy,omitempty"`
	RestoredAt *time.Time `json:"restoredAt,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"-"`
}

// HasMember reports whether memberID has access to the project.
func (p *Project) HasMember(memberID string) bool {
	return slices.Contains(p.MemberIDs, memberID)
}

// IsArchived reports whether the project is in the archived state.
func (p *Project) IsArchived() bool {
	return p.Status == ProjectStatusArchived
}
