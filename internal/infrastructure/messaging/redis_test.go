package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeOrderPlaced, "7", OrderPlaced{OrderID: 7})
	require.NoError(t, err)

	var payload OrderPlaced
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, uint(7), payload.OrderID)
	assert.Equal(t, TypeOrderPlaced, msg.Type)
}

func TestRedisQueueDeliversAndAcknowledges(t *testing.T) {
	client, _ := testdb.Redis(t)
	q := NewRedisQueue(client, "jobs", 2, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := uint(1); i <= 3; i++ {
		require.NoError(t, Publish(ctx, q, TypeOrderPlaced, "", OrderPlaced{OrderID: i}))
	}

	var mu sync.Mutex
	seen := map[uint]bool{}
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, func(ctx context.Context, msg Message) error {
			var p OrderPlaced
			if err := msg.Decode(&p); err != nil {
				return err
			}
			mu.Lock()
			seen[p.OrderID] = true
			mu.Unlock()
			if p.OrderID == 2 {
				return errors.New("handler failure")
			}
			return nil
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		n, _ := client.LLen(context.Background(), "queue:jobs:processing").Result()
		return n == 0
	}, 5*time.Second, 20*time.Millisecond, "failed jobs are acknowledged too")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestRedisQueueRecoverRequeuesProcessing(t *testing.T) {
	client, _ := testdb.Redis(t)
	q := NewRedisQueue(client, "jobs", 1, logger.Discard())
	ctx := context.Background()

	require.NoError(t, client.LPush(ctx, "queue:jobs:processing", `{"type":"order.placed"}`).Err())

	n, err := q.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	length, err := client.LLen(ctx, "queue:jobs").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestRedisQueueKeepsJobInterruptedByShutdown(t *testing.T) {
	client, _ := testdb.Redis(t)
	q := NewRedisQueue(client, "jobs", 1, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Publish(ctx, q, TypeOrderPlaced, "9", OrderPlaced{OrderID: 9}))

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, func(ctx context.Context, msg Message) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
		close(done)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}

	bg := context.Background()
	processing, err := client.LLen(bg, "queue:jobs:processing").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), processing)

	n, err := q.Recover(bg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	raw, err := client.RPop(bg, "queue:jobs").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"order.placed"`)
}

func TestMemoryQueueHistoryIsBounded(t *testing.T) {
	q := NewMemoryQueue(1, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = q.Consume(ctx, func(context.Context, Message) error { return nil })
	}()

	total := memoryHistory + 10
	for i := 1; i <= total; i++ {
		require.NoError(t, Publish(ctx, q, TypeOrderPlaced, fmt.Sprint(i), OrderPlaced{OrderID: uint(i)}))
	}

	published := q.Published()
	require.Len(t, published, memoryHistory)
	assert.Equal(t, "11", published[0].Key)
	assert.Equal(t, fmt.Sprint(total), published[len(published)-1].Key)
}
