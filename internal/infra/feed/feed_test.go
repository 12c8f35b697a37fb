package feed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisFeed(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test")
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no signal received")
	}
}

func TestLocalPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLocal()

	ch, err := l.Subscribe(ctx, TopicMaterials)
	require.NoError(t, err)

	require.NoError(t, l.Publish(ctx, TopicLedger))
	select {
	case <-ch:
		t.Fatal("signal on wrong topic")
	default:
	}

	require.NoError(t, l.Publish(ctx, TopicMaterials))
	require.NoError(t, l.Publish(ctx, TopicMaterials))
	waitSignal(t, ch)

	cancel()
	_, ok := <-ch
	for ok {
		_, ok = <-ch
	}
	assert.False(t, ok)
}

func TestRedisPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newRedisFeed(t)

	ch, err := f.Subscribe(ctx, TopicLedger)
	require.NoError(t, err)
	require.NoError(t, f.Publish(ctx, TopicLedger))
	waitSignal(t, ch)
}

func TestWatchReloadsOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewLocal()

	var loads atomic.Int32
	got := make(chan []int, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, l, TopicMaterials, func(context.Context) ([]int, error) {
			n := loads.Add(1)
			return []int{int(n)}, nil
		}, func(items []int) { got <- items })
	}()

	assert.Equal(t, []int{1}, <-got)
	require.NoError(t, l.Publish(ctx, TopicMaterials))
	assert.Equal(t, []int{2}, <-got)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
