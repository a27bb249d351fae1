package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogNotifier writes events to the application log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event Event) error {
	log.Info().
		Str("event", string(event.Type)).
		Str("org_id", event.OrgID).
		Str("actor_id", event.ActorID).
		Str("member_id", event.MemberID).
		Str("task_id", event.TaskID).
		Msg("Notification")
	return nil
}

// Multi fans an event out to several notifiers, returning the first failure after trying all.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
