package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventOrderAssigned, func(_ context.Context, event Event) error {
		seen = append(seen, event.ID)
		return nil
	})
	dispatcher.Subscribe(EventOrderAssigned, func(_ context.Context, event Event) error {
		seen = append(seen, event.ID+"-second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-1", Type: EventOrderAssigned})
	require.NoError(t, err)
	assert.Equal(t, []string{"evt-1", "evt-1-second"}, seen)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var called bool
	dispatcher.Subscribe(EventStaffInvited, func(_ context.Context, _ Event) error {
		return errors.New("smtp down")
	})
	dispatcher.Subscribe(EventStaffInvited, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-2", Type: EventStaffInvited})
	assert.Error(t, err)
	assert.True(t, called)
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventOrderCreated, func(_ context.Context, _ Event) error {
		t.Fatal("handler must not fire for other event types")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-3", Type: EventOrderUnassigned})
	assert.NoError(t, err)
}
