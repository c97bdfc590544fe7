package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []Event
	d.Subscribe(EventLogin, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})
	d.Subscribe(EventLogin, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})

	event := Event{
		ID:        "evt-1",
		Type:      EventLogin,
		SessionID: "sid-1",
		Username:  "somchai",
		Timestamp: time.Now(),
	}
	require.NoError(t, d.Publish(context.Background(), event))

	require.Len(t, seen, 2)
	assert.Equal(t, "evt-1", seen[0].ID)
	assert.Equal(t, "evt-1", seen[1].ID)
}

func TestPublishIgnoresUnrelatedEventTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventLogout, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLogin}))
	assert.False(t, called)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventRefreshFailed}))
}
