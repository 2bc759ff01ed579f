package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopoholic/internal/storage"
)

func TestNotifyDeliversInRegistrationOrder(t *testing.T) {
	n := New(zerolog.Nop())

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		n.Register(func(Event) { order = append(order, i) })
	}

	n.Notify()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	n := New(zerolog.Nop())

	var calls int
	h := n.Register(func(Event) { calls++ })
	n.Notify()
	n.Unregister(h)
	n.Unregister(h)
	n.Notify()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, n.Len())
}

func TestUnregisterDuringDeliverySkipsPendingListener(t *testing.T) {
	n := New(zerolog.Nop())

	var second Handle
	var secondCalls int
	n.Register(func(Event) { n.Unregister(second) })
	second = n.Register(func(Event) { secondCalls++ })

	n.Notify()

	assert.Zero(t, secondCalls)
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	n := New(zerolog.Nop())

	var calls int
	cancel := n.Subscribe(func(Event) { calls++ })
	other := n.Register(func(Event) {})

	cancel()
	cancel()
	n.Notify()

	assert.Zero(t, calls)
	assert.Equal(t, 1, n.Len())
	n.Unregister(other)
}

func TestPanickingListenerDoesNotStopFanOut(t *testing.T) {
	n := New(zerolog.Nop())

	var reached bool
	n.Register(func(Event) { panic("boom") })
	n.Register(func(Event) { reached = true })

	require.NotPanics(t, n.Notify)
	assert.True(t, reached)
}

func TestRelayRefreshesBeforeFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := storage.NewMemory()
	local := mem.Area("browser")
	remote := mem.Area("browser")

	n := New(zerolog.Nop())

	var refreshed atomic.Int32
	seen := make(chan int32, 4)
	n.Register(func(Event) {
		select {
		case seen <- refreshed.Load():
		default:
		}
	})

	changes, err := local.Changes(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Relay(ctx, changes, func(context.Context) { refreshed.Add(1) })
	}()

	require.NoError(t, remote.SetItems(ctx, map[string]string{"token": "t1"}))

	select {
	case got := <-seen:
		assert.EqualValues(t, 1, got)
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not notified about the remote change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop with its context")
	}
}

func TestRelayIgnoresOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := storage.NewMemory()
	area := mem.Area("browser")
	n := New(zerolog.Nop())

	var calls atomic.Int32
	n.Register(func(Event) { calls.Add(1) })

	changes, err := area.Changes(ctx)
	require.NoError(t, err)
	go n.Relay(ctx, changes, nil)

	require.NoError(t, area.SetItems(ctx, map[string]string{"token": "t1"}))
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, calls.Load())
}
