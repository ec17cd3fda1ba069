package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisPollTimeout = 2 * time.Second

// RedisQueue is a reliable list queue. Consumers move each message to a
// processing list and remove it once handled, so a crashed worker leaves
// its message behind for Recover.
type RedisQueue struct {
	client     *redis.Client
	name       string
	processing string
	workers    int
	logger     *logrus.Logger
}

// NewRedisQueue creates a queue stored under the given list name
func NewRedisQueue(client *redis.Client, name string, workers int, logger *logrus.Logger) *RedisQueue {
	if workers < 1 {
		workers = 1
	}
	return &RedisQueue{
		client:     client,
		name:       "queue:" + name,
		processing: "queue:" + name + ":processing",
		workers:    workers,
		logger:     logger,
	}
}

// Publish pushes msg on the queue
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", msg.Type, err)
	}
	return nil
}

// Recover puts messages left in the processing list back on the queue.
// It must run before consumers start.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.name).Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to recover messages: %w", err)
		}
		moved++
	}
}

// Consume starts the configured number of workers and blocks until ctx is
// cancelled and every worker has returned.
func (q *RedisQueue) Consume(ctx context.Context, handler Handler) error {
	if n, err := q.Recover(ctx); err != nil {
		return err
	} else if n > 0 {
		q.logger.WithField("count", n).Warn("requeued unfinished jobs")
	}

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			q.work(ctx, worker, handler)
		}(i)
	}
	wg.Wait()
	return nil
}

func (q *RedisQueue) work(ctx context.Context, worker int, handler Handler) {
	log := q.logger.WithFields(logrus.Fields{"queue": q.name, "worker": worker})

	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := q.client.BRPopLPush(ctx, q.name, q.processing, redisPollTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("failed to read from queue")
			time.Sleep(redisPollTimeout)
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			log.WithError(err).Error("dropping malformed message")
		} else if err := handler(ctx, msg); err != nil {
			fields := logrus.Fields{"type": msg.Type, "key": msg.Key}
			if ctx.Err() != nil {
				// interrupted by shutdown: Recover requeues it on the next start
				log.WithError(err).WithFields(fields).Warn("job interrupted, left for recovery")
				return
			}
			log.WithError(err).WithFields(fields).Error("job failed")
		}

		// a fresh context so a cancelled ctx cannot skip the acknowledgement
		ackCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := q.client.LRem(ackCtx, q.processing, 1, raw).Err(); err != nil {
			log.WithError(err).Error("failed to acknowledge message")
		}
		cancel()
	}
}

// Close is a no-op; the Redis client is owned by the caller
func (q *RedisQueue) Close() error {
	return nil
}
