package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_NilClientIsNoop(t *testing.T) {
	p := NewPublisher(nil)
	assert.NoError(t, p.PublishPostSaved(context.Background(), 1))
	assert.NoError(t, p.StartPostSavedSubscriber(context.Background(), func(PostSavedEvent) {}))
}

func TestPublisher_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	p := NewPublisher(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got atomic.Uint32
	require.NoError(t, p.StartPostSavedSubscriber(ctx, func(ev PostSavedEvent) {
		got.Store(uint32(ev.PostID))
	}))

	// Subscription is established asynchronously.
	require.Eventually(t, func() bool {
		require.NoError(t, p.PublishPostSaved(ctx, 42))
		return got.Load() == 42
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublisher_SubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	p := NewPublisher(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Uint32
	require.NoError(t, p.StartPostSavedSubscriber(ctx, func(PostSavedEvent) {
		calls.Add(1)
	}))

	cancel()
	time.Sleep(50 * time.Millisecond)

	before := calls.Load()
	_ = p.PublishPostSaved(context.Background(), 7)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, calls.Load(), "cancelled subscriber must not receive events")
}
