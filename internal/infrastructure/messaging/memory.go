package messaging

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	memoryBuffer = 256
	// memoryHistory bounds what Published can return
	memoryHistory = 256
)

// MemoryQueue keeps jobs in process. Jobs are lost on restart; it serves
// single-process development setups and tests.
type MemoryQueue struct {
	ch        chan Message
	workers   int
	logger    *logrus.Logger
	mu        sync.Mutex
	published []Message
}

// NewMemoryQueue creates an in-process queue
func NewMemoryQueue(workers int, logger *logrus.Logger) *MemoryQueue {
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{
		ch:      make(chan Message, memoryBuffer),
		workers: workers,
		logger:  logger,
	}
}

// Publish records msg and hands it to the consumers
func (q *MemoryQueue) Publish(ctx context.Context, msg Message) error {
	q.mu.Lock()
	q.published = append(q.published, msg)
	if over := len(q.published) - memoryHistory; over > 0 {
		q.published = append(q.published[:0], q.published[over:]...)
	}
	q.mu.Unlock()

	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Published returns the most recent published messages, oldest first
func (q *MemoryQueue) Published() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.published...)
}

// Consume dispatches messages to handler until ctx is cancelled
func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-q.ch:
					if err := handler(ctx, msg); err != nil {
						q.logger.WithError(err).WithField("type", msg.Type).Error("job failed")
					}
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

// Close is a no-op
func (q *MemoryQueue) Close() error {
	return nil
}
