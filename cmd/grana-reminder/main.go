package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"grana/internal/backend"
	"grana/internal/config"
	"grana/internal/log"
	"grana/internal/mail"
	"grana/internal/services"
	"grana/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup("grana-reminder")
	logger.Info("Starting grana-reminder")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.SMTPHost == "" {
		logger.Error("SMTP_HOST is required for the reminder worker")
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	store, err := factory.CreateBackend(backend.Config{
		Type:         backend.BackendType(cfg.DataBackend),
		DatabaseURL:  cfg.DatabaseURL,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The reminder only reads, so no AMQP client is wired in
	svc := services.NewFinanceService(store, nil)
	defer svc.Close()

	sender := mail.NewSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     strconv.Itoa(cfg.SMTPPort),
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Sender:   cfg.SenderEmail,
	})

	reminder := worker.NewReminderWorker(svc, sender, cfg.DigestTo, cfg.ReminderDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReminderCron, func() {
		if err := reminder.Run(ctx, time.Now()); err != nil {
			logger.Error("Reminder run failed", "error", err)
		}
	}); err != nil {
		logger.Error("Invalid reminder cron expression", "error", err, "cron", cfg.ReminderCron)
		os.Exit(1)
	}

	c.Start()
	logger.Info("Reminder scheduled", "cron", cfg.ReminderCron, "to", cfg.DigestTo, "horizon_days", cfg.ReminderDays)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Let an in-flight run finish before exiting
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
	logger.Info("Reminder shutdown complete")
}
