package notify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// setupTestRedis 创建测试用Redis
func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMemoryChannel(t *testing.T) {
	ch := NewMemoryChannel()
	ctx := context.Background()

	var songs, requests atomic.Int32
	subSongs, err := ch.Subscribe(TableSongs, func() { songs.Add(1) })
	require.NoError(t, err)
	_, err = ch.Subscribe(TableRequests, func() { requests.Add(1) })
	require.NoError(t, err)

	t.Run("only matching table is notified", func(t *testing.T) {
		require.NoError(t, ch.Publish(ctx, TableSongs))
		assert.EqualValues(t, 1, songs.Load())
		assert.EqualValues(t, 0, requests.Load())
	})

	t.Run("no callback after unsubscribe", func(t *testing.T) {
		subSongs.Unsubscribe()
		subSongs.Unsubscribe()
		require.NoError(t, ch.Publish(ctx, TableSongs))
		assert.EqualValues(t, 1, songs.Load())
		assert.Equal(t, 0, ch.reg.count(TableSongs))
	})

	t.Run("unknown table", func(t *testing.T) {
		assert.ErrorIs(t, ch.Publish(ctx, Table("bogus")), ErrUnknownTable)
		_, err := ch.Subscribe(Table("bogus"), func() {})
		assert.ErrorIs(t, err, ErrUnknownTable)
		_, err = ch.Subscribe(TableUsers, nil)
		assert.ErrorIs(t, err, ErrNilCallback)
	})

	t.Run("callback may unsubscribe itself", func(t *testing.T) {
		var sub *Subscription
		var calls atomic.Int32
		sub, err = ch.Subscribe(TableUsers, func() {
			calls.Add(1)
			sub.Unsubscribe()
		})
		require.NoError(t, err)
		require.NoError(t, ch.Publish(ctx, TableUsers))
		require.NoError(t, ch.Publish(ctx, TableUsers))
		assert.EqualValues(t, 1, calls.Load())
	})
}

func TestRedisChannel(t *testing.T) {
	client := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := NewRedisChannel(client, "ktv:test", logger.Nop())
	consumer := NewRedisChannel(client, "ktv:test", logger.Nop())

	var requests, users atomic.Int32
	sub, err := consumer.Subscribe(TableRequests, func() { requests.Add(1) })
	require.NoError(t, err)
	_, err = consumer.Subscribe(TableUsers, func() { users.Add(1) })
	require.NoError(t, err)

	consumer.Start(ctx)
	defer consumer.Stop()

	select {
	case <-consumer.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never became ready")
	}

	t.Run("delivers across instances", func(t *testing.T) {
		require.NoError(t, publisher.Publish(ctx, TableRequests))
		assert.Eventually(t, func() bool { return requests.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.EqualValues(t, 0, users.Load())
		assert.EqualValues(t, 1, publisher.GetStats().Published)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		sub.Unsubscribe()
		require.NoError(t, publisher.Publish(ctx, TableRequests))
		require.NoError(t, publisher.Publish(ctx, TableUsers))
		assert.Eventually(t, func() bool { return users.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.EqualValues(t, 1, requests.Load())
	})

	t.Run("unknown table rejected", func(t *testing.T) {
		assert.ErrorIs(t, publisher.Publish(ctx, Table("nope")), ErrUnknownTable)
	})
}
