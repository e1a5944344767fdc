package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvokesHandlersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(EventTicketReported, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return nil
	})
	d.Subscribe(EventTicketReported, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketReported, TicketID: 7})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()

	delivered := false
	d.Subscribe(EventTicketEscalated, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketEscalated, func(ctx context.Context, e Event) error {
		delivered = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketEscalated}))
	assert.True(t, delivered)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventMilestoneCreated}))
}
