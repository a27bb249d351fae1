// Package notify delivers domain events to external channels on a best-effort basis.
package notify

import (
	"context"
	"time"
)

// EventType names a domain event.
type EventType string

const (
	MemberInvited     EventType = "member.invited"
	MemberRemoved     EventType = "member.removed"
	TaskAssigned      EventType = "task.assigned"
	TaskStatusChanged EventType = "task.status_changed"
)

// Event is a notification payload. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType `json:"type"`
	OrgID      string    `json:"organizationId"`
	ActorID    string    `json:"actorId,omitempty"`
	MemberID   string    `json:"memberId,omitempty"`
	Email      string    `json:"email,omitempty"`
	ProjectID  string    `json:"projectId,omitempty"`
	TaskID     string    `json:"taskId,omitempty"`
	TaskTitle  string    `json:"taskTitle,omitempty"`
	AssigneeID string    `json:"assigneeId,omitempty"`
	OldStatus  string    `json:"oldStatus,omitempty"`
	NewStatus  string    `json:"newStatus,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Notifier delivers a single event, blocking until delivery completes or fails.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Emitter accepts events without waiting for delivery.
type Emitter interface {
	Emit(event Event)
}

// Discard is an Emitter that drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}
