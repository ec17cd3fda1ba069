package messaging

import (
	"fmt"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// New returns the queue selected by cfg.Queue.Driver
func New(cfg *config.Config, redisClient *redis.Client, logger *logrus.Logger) (Queue, error) {
	switch cfg.Queue.Driver {
	case "redis", "":
		return NewRedisQueue(redisClient, cfg.Queue.Name, cfg.Queue.Workers, logger), nil
	case "memory":
		return NewMemoryQueue(cfg.Queue.Workers, logger), nil
	case "kafka":
		return NewKafkaQueue(cfg.Queue.KafkaBrokers, cfg.Queue.Name, cfg.Queue.KafkaGroupID, cfg.Queue.Workers, logger), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver: %s", cfg.Queue.Driver)
	}
}
