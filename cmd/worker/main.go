// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hackerz/marketplace/internal/app"
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/infrastructure/database/postgres"
	"github.com/hackerz/marketplace/internal/infrastructure/database/redis"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

// The worker renders invoices and sends notification emails queued by the
// API. Run it alone with QUEUE_IN_PROCESS=false on the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithField("driver", cfg.Queue.Driver).Info("starting notification worker")

	if cfg.Queue.Driver == "memory" {
		log.Fatal("the memory queue only works inside the API process")
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	queue, err := messaging.New(cfg, redisClient.Redis, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create job queue")
	}
	defer queue.Close()

	services, err := app.NewServices(cfg, db.GetDB(), queue, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build services")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := queue.Consume(ctx, services.Notifications.Handle); err != nil {
		log.WithError(err).Error("worker stopped with error")
		return
	}
	log.Info("worker stopped")
}
