package messaging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseEvent
}

func (e testEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

func newTestEvent(eventType shared.EventType) testEvent {
	return testEvent{BaseEvent: shared.NewBaseEvent(eventType, "m-1")}
}

// syncBus returns a synchronous bus so tests assert without sleeping.
func syncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	return NewInMemoryEventBus(config)
}

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var mu sync.Mutex
	var received []shared.EventType

	handler := func(event shared.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.EventType())
		return nil
	}

	require.NoError(t, bus.Subscribe(shared.EventMissionFailed, handler))

	require.NoError(t, bus.Publish(newTestEvent(shared.EventMissionFailed)))
	require.NoError(t, bus.Publish(newTestEvent(shared.EventMissionCompleted)), "no handler is not an error")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []shared.EventType{shared.EventMissionFailed}, received)
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	count := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(newTestEvent(shared.EventMissionFailed)))
	require.NoError(t, bus.Publish(newTestEvent(shared.EventMissionCompleted)))

	assert.Equal(t, 2, count)
}

// A failing handler is logged and counted, never propagated: event
// delivery happens after the transition is already committed.
func TestEventBus_HandlerErrorNotPropagated(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventMissionFailed, func(shared.Event) error {
		return errors.New("handler exploded")
	}))

	assert.NoError(t, bus.Publish(newTestEvent(shared.EventMissionFailed)))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(1), snapshot.TotalHandlerExecs)
	assert.Equal(t, 0.0, snapshot.HandlerSuccessRate)
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	config := DefaultInMemoryEventBusConfig()
	config.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(config)

	var wg sync.WaitGroup
	wg.Add(5)

	var mu sync.Mutex
	seen := 0

	require.NoError(t, bus.Subscribe(shared.EventMissionFailed, func(shared.Event) error {
		defer wg.Done()
		mu.Lock()
		seen++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(newTestEvent(shared.EventMissionFailed)))
	}

	wg.Wait()
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, seen)
}

func TestEventBus_Closed(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "closing twice is a no-op")

	assert.ErrorIs(t, bus.Publish(newTestEvent(shared.EventMissionFailed)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventMissionFailed, func(shared.Event) error { return nil }), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestEventBus_NilArguments(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventMissionFailed, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}
