package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neko-signal-bot/internal/types"
)

func quietBus(buffer int) *EventBus {
	return NewEventBus(EventBusConfig{BufferSize: buffer, WorkerCount: 2})
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := quietBus(10)
	bus.AddMiddleware(&ValidationMiddleware{})

	var got sync.WaitGroup
	got.Add(1)
	var received types.Event
	sub := NewSubscriber("test").On(types.EventSignalOpened, func(e types.Event) error {
		received = e
		got.Done()
		return nil
	})
	bus.Subscribe(types.EventSignalOpened, sub)
	bus.Start()
	defer bus.Stop()

	require.NoError(t, bus.Publish(types.Event{Type: types.EventSignalOpened, Source: "test", Data: "x"}))
	got.Wait()

	assert.NotEmpty(t, received.ID)
	assert.False(t, received.Timestamp.IsZero())
	assert.Equal(t, "x", received.Data)
}

func TestSubscribeIgnoresUndeclaredEvent(t *testing.T) {
	bus := quietBus(1)
	sub := NewSubscriber("test").On(types.EventSignalOpened, func(types.Event) error { return nil })

	bus.Subscribe(types.EventMarketSnapshot, sub)
	assert.Zero(t, bus.GetSubscriberCount(types.EventMarketSnapshot))

	bus.SubscribeAll(sub)
	assert.Equal(t, 1, bus.GetSubscriberCount(types.EventSignalOpened))
	assert.Equal(t, []types.EventType{types.EventSignalOpened}, bus.GetEventTypes())

	bus.Unsubscribe(types.EventSignalOpened, sub)
	assert.Zero(t, bus.GetSubscriberCount(types.EventSignalOpened))
}

func TestPublishRequiresRunningBus(t *testing.T) {
	bus := quietBus(1)
	err := bus.Publish(types.Event{Type: types.EventError, Source: "test"})
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestPublishSyncIsolatesFailures(t *testing.T) {
	bus := quietBus(1)
	var calls int32

	failing := NewSubscriber("failing").On(types.EventPositionResolved, func(types.Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})
	panicking := NewSubscriber("panicking").On(types.EventPositionResolved, func(types.Event) error {
		atomic.AddInt32(&calls, 1)
		panic("oops")
	})
	healthy := NewSubscriber("healthy").On(types.EventPositionResolved, func(types.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	bus.SubscribeAll(failing)
	bus.SubscribeAll(panicking)
	bus.SubscribeAll(healthy)

	err := bus.PublishSync(types.Event{Type: types.EventPositionResolved, Source: "test"})
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	m := bus.GetMetrics()
	assert.Equal(t, int64(2), m.EventsFailed)
	assert.Equal(t, int64(1), m.EventsProcessed)
	assert.Equal(t, 3, m.SubscribersCount[types.EventPositionResolved])
}

func TestValidationMiddlewareRejectsMissingSource(t *testing.T) {
	bus := quietBus(1)
	bus.AddMiddleware(&ValidationMiddleware{})
	called := false
	bus.SubscribeAll(NewSubscriber("s").On(types.EventError, func(types.Event) error {
		called = true
		return nil
	}))

	err := bus.PublishSync(types.Event{Type: types.EventError})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestBufferFullDropsEvent(t *testing.T) {
	bus := NewEventBus(EventBusConfig{BufferSize: 1, WorkerCount: 1})

	block := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.SubscribeAll(NewSubscriber("slow").On(types.EventMarketSnapshot, func(types.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
		return nil
	}))
	bus.Start()

	ev := types.Event{Type: types.EventMarketSnapshot, Source: "test"}
	require.NoError(t, bus.Publish(ev))
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not pick up the event")
	}

	require.NoError(t, bus.Publish(ev)) // занимает буфер
	err := bus.Publish(ev)
	assert.ErrorIs(t, err, ErrBufferFull)
	assert.Equal(t, int64(1), bus.GetMetrics().EventsDropped)

	close(block)
	bus.Stop()
	assert.Equal(t, int64(2), bus.GetMetrics().EventsProcessed)
}

func TestSubscriberRoutesTypedPayloads(t *testing.T) {
	var signals []string
	var resolved []string
	sub := NewSubscriber("router").
		OnResolution(func(r types.ResolutionEvent) error {
			resolved = append(resolved, r.PositionID+":"+r.Reason)
			return nil
		}).
		OnSignal(func(s types.SignalEvent) error {
			signals = append(signals, s.Symbol)
			return nil
		})

	assert.Equal(t, "router", sub.GetName())
	assert.Equal(t, []types.EventType{types.EventPositionResolved, types.EventSignalOpened}, sub.GetSubscribedEvents())

	require.NoError(t, sub.HandleEvent(types.Event{Type: types.EventSignalOpened, Data: types.SignalEvent{Symbol: "BTCUSDT"}}))
	require.NoError(t, sub.HandleEvent(types.Event{Type: types.EventPositionResolved, Data: types.ResolutionEvent{PositionID: "p-1", Reason: "SL_HIT"}}))
	assert.Equal(t, []string{"BTCUSDT"}, signals)
	assert.Equal(t, []string{"p-1:SL_HIT"}, resolved)

	err := sub.HandleEvent(types.Event{Type: types.EventSignalOpened, Data: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected payload int")
	assert.Error(t, sub.HandleEvent(types.Event{Type: types.EventMarketSnapshot}))
}

func TestSubscriberReplacesHandlerKeepsOrder(t *testing.T) {
	first, second := 0, 0
	sub := NewSubscriber("s").
		OnSnapshot(func(types.MarketSnapshot) error { first++; return nil }).
		On(types.EventCycleCompleted, func(types.Event) error { return nil }).
		OnSnapshot(func(types.MarketSnapshot) error { second++; return nil })

	require.NoError(t, sub.HandleEvent(types.Event{Type: types.EventMarketSnapshot, Data: types.MarketSnapshot{Symbol: "ETHUSDT"}}))
	assert.Zero(t, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, []types.EventType{types.EventMarketSnapshot, types.EventCycleCompleted}, sub.GetSubscribedEvents())
}
