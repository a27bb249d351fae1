package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/teamhub/internal/models"
)

// Sentinel errors for task store operations
var (
	ErrTaskNotFound = errors.New("task not found")
)

// TaskGrouping names the column CountGrouped aggregates on.
type TaskGrouping string

const (
	GroupByStatus   TaskGrouping = "status"
	GroupByPriority TaskGrouping = "priority"
	GroupByProject  TaskGrouping = "project_id"
	GroupByAssignee TaskGrouping = "assignee_id"
)

// Valid reports whether g is a known grouping.
func (g TaskGrouping) Valid() bool {
	switch g {
	case GroupByStatus, GroupByPriority, GroupByProject, GroupByAssignee:
		return true
	}
	return false
}

// TaskStore defines the interface for task storage operations.
// Soft-deleted tasks are invisible to every read.
type TaskStore interface {
	// Create inserts a task.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist or was deleted.
	Get(ctx context.Context, taskID string) (*models.Task, error)

	// List returns tasks matching filter. Results are ordered by due date ascending
	// when a due date bound is set, otherwise newest first.
	List(ctx context.Context, filter TaskFilter, page Page) ([]*models.Task, error)

	// Count returns the number of tasks matching filter.
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// CountGrouped counts the tasks of projectIDs per distinct value of by.
	// Unassigned tasks are left out of GroupByAssignee.
	CountGrouped(ctx context.Context, projectIDs []string, by TaskGrouping) (map[string]int64, error)

	// ListRecent returns up to limit tasks of projectIDs, most recently updated first.
	ListRecent(ctx context.Context, projectIDs []string, limit int) ([]*models.Task, error)

	// Update applies a partial update and bumps UpdatedAt.
	// Returns ErrTaskNotFound if the task doesn't exist or was deleted.
	Update(ctx context.Context, taskID string, patch TaskPatch) error

	// SoftDelete marks a task as deleted.
	SoftDelete(ctx context.Context, taskID string) error
}
