// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hackerz/marketplace/internal/app"
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/infrastructure/database/postgres"
	"github.com/hackerz/marketplace/internal/infrastructure/database/redis"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/interfaces/http"
	"github.com/hackerz/marketplace/internal/pkg/auth"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/hackerz/marketplace/internal/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting marketplace API")

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

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}
	if err := migration.RunSQLMigrations(context.Background()); err != nil {
		log.WithError(err).Fatal("sql migrations failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(cfg.Security.AdminSeedPassword); err != nil {
			log.WithError(err).Warn("data seeding failed")
		}
	}

	queue, err := messaging.New(cfg, redisClient.Redis, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create job queue")
	}
	defer queue.Close()

	services, err := app.NewServices(cfg, db.GetDB(), queue, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build services")
	}

	server := http.NewServer(http.Deps{
		Config:   cfg,
		Logger:   log,
		JWT:      auth.NewJWTManager(cfg),
		Sessions: session.NewRedisStore(redisClient.Redis),
		Redis:    redisClient.Redis,
		Handlers: services.Handlers(cfg, log),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var workers sync.WaitGroup
	if cfg.Queue.InProcess {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := queue.Consume(ctx, services.Notifications.Handle); err != nil {
				log.WithError(err).Error("notification worker stopped")
			}
		}()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}
	workers.Wait()

	log.Info("server shutdown completed")
}
