package outbox

import (
	"context"
	"testing"
	"time"

	domoutbox "github.com/marchworks/stockroom/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ payload string }

func (testEvent) EventName() string { return "test.event" }

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(nil)
	received := make(chan domoutbox.Event, 1)
	bus.Subscribe("test.event", func(_ context.Context, e domoutbox.Event) error {
		received <- e
		return nil
	})

	ctx := context.Background()
	bus.Start(ctx)
	defer bus.Stop(ctx)

	require.NoError(t, bus.Publish(ctx, testEvent{payload: "hello"}))

	select {
	case e := <-received:
		evt, ok := e.(testEvent)
		require.True(t, ok)
		assert.Equal(t, "hello", evt.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBusDropsUnsubscribedEvent(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()
	bus.Start(ctx)
	defer bus.Stop(ctx)

	// No subscriber for this name; publish must still succeed.
	require.NoError(t, bus.Publish(ctx, testEvent{}))
}

func TestBusSurvivesHandlerPanic(t *testing.T) {
	bus := NewBus(nil)
	calls := make(chan struct{}, 2)
	bus.Subscribe("test.event", func(context.Context, domoutbox.Event) error {
		calls <- struct{}{}
		panic("handler exploded")
	})

	ctx := context.Background()
	bus.Start(ctx)
	defer bus.Stop(ctx)

	require.NoError(t, bus.Publish(ctx, testEvent{}))
	require.NoError(t, bus.Publish(ctx, testEvent{}))

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("dispatch loop stopped after panic")
		}
	}
}
