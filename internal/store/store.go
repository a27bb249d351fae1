package store

import (
	"time"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Page bounds a listing query.
type Page struct {
	Skip  int
	Limit int
}

// Stores bundles the entity stores backing a single deployment.
type Stores struct {
	Organizations OrganizationStore
	Members       MemberStore
	Projects      ProjectStore
	Tasks         TaskStore
	BillingPlans  BillingPlanStore
	APIKeys       APIKeyStore
}

// MaxProjectIDs caps the number of project ids returned by ProjectStore.ListIDs.
const MaxProjectIDs = 1000

// ProjectPatch is a partial project update. Nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	ArchivedBy  *string
	ArchivedAt  *time.Time
	RestoredBy  *string
	RestoredAt  *time.Time
}

// TaskPatch is a partial task update. Nil fields are left unchanged.
// An empty AssigneeID clears the assignee.
type TaskPatch struct {
	Title       *string
	Description *string
	AssigneeID  *string
	Priority    *models.TaskPriority
	DueDate     *time.Time
	Tags        []string // nil leaves tags unchanged
	Status      *models.TaskStatus
}

// TaskFilter selects tasks. Empty fields do not constrain the result.
type TaskFilter struct {
	ProjectIDs []string // required; tasks outside these projects never match
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Search     string     // case-insensitive title substring
	DueFrom    *time.Time // inclusive
	DueBefore  *time.Time // exclusive
}
