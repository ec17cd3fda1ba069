// cmd/ops/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/pkg/auth"
	"github.com/hackerz/marketplace/internal/pkg/email"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

const usage = `usage:
  ops hash-password <password>   print a bcrypt hash for a seed or manual reset
  ops test-email <address>       send a test message through the configured provider`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	log := logger.New(cfg)

	switch os.Args[1] {
	case "hash-password":
		hashPassword(cfg, log, os.Args[2])
	case "test-email":
		testEmail(cfg, log, os.Args[2])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func hashPassword(cfg *config.Config, log *logrus.Logger, password string) {
	if err := auth.ValidatePassword(password); err != nil {
		log.WithError(err).Fatal("password rejected")
	}

	passwords := auth.NewPasswordManager(cfg)
	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.WithError(err).Fatal("hash verification failed")
	}
	fmt.Println(hash)
}

func testEmail(cfg *config.Config, log *logrus.Logger, to string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mailer := email.NewEmailService(cfg, log)
	err := mailer.Send(ctx, &email.Email{
		To:          []string{to},
		Subject:     cfg.App.Name + " test email",
		HTMLContent: "<h1>It works</h1><p>Outgoing mail is configured correctly.</p>",
		TextContent: "Outgoing mail is configured correctly.",
		Type:        "test",
	})
	if err != nil {
		log.WithError(err).WithField("provider", cfg.Email.Provider).Fatal("test email failed")
	}
	log.WithFields(logrus.Fields{"to": to, "provider": cfg.Email.Provider}).Info("test email sent")
}
