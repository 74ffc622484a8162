package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventRequestCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	payload := RequestEventPayload{RequestID: "abc", Status: "pending"}
	require.NoError(t, bus.PublishJSON(EventRequestCreated, payload))

	require.Len(t, received, 1)
	assert.False(t, received[0].CreatedAt.IsZero())

	var got RequestEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &got))
	assert.Equal(t, "abc", got.RequestID)
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventRequestDeleted, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventRequestUpdated, RequestEventPayload{RequestID: "x"}))
	assert.Zero(t, calls)
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventRequestCreated, RequestEventPayload{}))
}
