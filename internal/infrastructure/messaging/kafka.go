package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaQueue publishes jobs to a topic and consumes them as a consumer
// group. Offsets are committed after the handler ran.
type KafkaQueue struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	workers int
	logger  *logrus.Logger
}

// NewKafkaQueue creates a queue on the given topic
func NewKafkaQueue(brokers []string, topic, groupID string, workers int, logger *logrus.Logger) *KafkaQueue {
	if workers < 1 {
		workers = 1
	}
	return &KafkaQueue{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
		workers: workers,
		logger:  logger,
	}
}

// Publish writes msg keyed by msg.Key
func (q *KafkaQueue) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", msg.Type, err)
	}
	return nil
}

// Consume runs one group member per worker until ctx is cancelled
func (q *KafkaQueue) Consume(ctx context.Context, handler Handler) error {
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

func (q *KafkaQueue) work(ctx context.Context, worker int, handler Handler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: q.brokers,
		Topic:   q.topic,
		GroupID: q.groupID,
	})
	defer reader.Close()

	log := q.logger.WithFields(logrus.Fields{"topic": q.topic, "worker": worker})
	log.Info("kafka consumer started")

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.WithError(err).Error("failed to fetch message")
			continue
		}

		var msg Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.WithError(err).WithField("offset", m.Offset).Error("dropping malformed message")
		} else if err := handler(ctx, msg); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"type": msg.Type,
				"key":  msg.Key,
			}).Error("job failed")
		}

		if err := reader.CommitMessages(context.Background(), m); err != nil {
			log.WithError(err).Error("failed to commit offset")
		}
	}
}

// Close flushes and closes the writer
func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}
