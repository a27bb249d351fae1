package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the progress state of a task. Any status may follow any other.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// ParseTaskStatus converts s into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// ParseTaskPriority converts s into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch p := TaskPriority(strings.ToUpper(strings.TrimSpace(s))); p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// Task is a unit of work inside a project.
type Task struct {
	TaskID      string       `json:"id"` // UUIDv7
	ProjectID   string       `json:"projectId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssigneeID  *string      `json:"assigneeId,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Tags        []string     `json:"tags"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"-"`
}
