package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
	panic  bool
	block  time.Duration
}

func (r *recordingNotifier) Notify(ctx context.Context, event Event) error {
	if r.panic {
		panic("boom")
	}
	if r.block > 0 {
		select {
		case <-time.After(r.block):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func TestAsync_DeliversEvents(t *testing.T) {
	rec := &recordingNotifier{}
	async := NewAsync(rec, time.Second)

	async.Emit(Event{Type: MemberInvited, OrgID: "org-1", Email: "a@example.com"})
	async.Emit(Event{Type: TaskAssigned, OrgID: "org-1", TaskID: "t1"})

	require.NoError(t, async.Close(context.Background()))
	require.Len(t, rec.events, 2)
	for _, e := range rec.events {
		require.False(t, e.OccurredAt.IsZero())
	}
}

func TestAsync_FailuresDoNotPropagate(t *testing.T) {
	tests := []struct {
		name     string
		notifier *recordingNotifier
	}{
		{name: "error", notifier: &recordingNotifier{err: errors.New("smtp down")}},
		{name: "panic", notifier: &recordingNotifier{panic: true}},
		{name: "timeout", notifier: &recordingNotifier{block: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			async := NewAsync(tt.notifier, 20*time.Millisecond)

			start := time.Now()
			async.Emit(Event{Type: MemberRemoved, OrgID: "org-1"})
			require.Less(t, time.Since(start), 10*time.Millisecond)

			require.NoError(t, async.Close(context.Background()))
		})
	}
}

func TestMulti(t *testing.T) {
	a := &recordingNotifier{err: errors.New("first")}
	b := &recordingNotifier{}

	err := Multi{a, b}.Notify(context.Background(), Event{Type: TaskStatusChanged})
	require.EqualError(t, err, "first")
	require.Len(t, b.events, 1)
}

func TestWebhookNotifier(t *testing.T) {
	secret := "s3cret"

	var (
		gotBody      []byte
		gotSignature string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Secret: secret}, srv.Client())
	err := n.Notify(context.Background(), Event{Type: TaskStatusChanged, OrgID: "org-1", OldStatus: "TODO", NewStatus: "DONE"})
	require.NoError(t, err)

	require.Equal(t, Sign([]byte(secret), gotBody), gotSignature)

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	require.Equal(t, "DONE", decoded.NewStatus)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL}, srv.Client())
	require.Error(t, n.Notify(context.Background(), Event{Type: MemberInvited}))
}
