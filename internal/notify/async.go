package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/teamhub/internal/telemetry"
)

// Async emits events by delivering each one on its own goroutine.
// Delivery failures and panics are logged and counted, never surfaced to the emitter.
type Async struct {
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewAsync wraps notifier. Each delivery is bounded by timeout.
func NewAsync(notifier Notifier, timeout time.Duration) *Async {
	return &Async{
		notifier: notifier,
		timeout:  timeout,
	}
}

// Emit schedules delivery of event and returns immediately.
func (a *Async) Emit(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.deliver(event)
	}()
}

func (a *Async) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	outcome := "delivered"
	defer func() {
		telemetry.GetMetrics().RecordNotification(ctx, string(event.Type), outcome)
	}()

	defer func() {
		if r := recover(); r != nil {
			outcome = "failed"
			log.Error().Str("event", string(event.Type)).Str("panic", fmt.Sprint(r)).Msg("Notifier panicked")
		}
	}()

	if err := a.notifier.Notify(ctx, event); err != nil {
		outcome = "failed"
		log.Warn().Err(err).
			Str("event", string(event.Type)).
			Str("org_id", event.OrgID).
			Msg("Failed to deliver notification")
	}
}

// Close waits for in-flight deliveries, giving up when ctx is done.
func (a *Async) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifications still in flight: %w", ctx.Err())
	}
}
