package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskapi/internal/config"
	"taskapi/internal/logging"
	"taskapi/internal/notify"
)

func main() {
	cfg := config.Load()
	logger := logging.WithComponent(
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}),
		"notifier",
	)

	if cfg.NATSURL == "" {
		logger.Error("NATS_URL is required")
		os.Exit(1)
	}

	_, nc, err := notify.Connect(cfg.NATSURL, logger)
	if err != nil {
		logger.Error("connect nats", "url", cfg.NATSURL, "error", err)
		os.Exit(1)
	}
	defer nc.Drain()

	worker := notify.NewWorker(notify.NewLogMailer(logger), logger)
	if _, err := worker.Subscribe(nc); err != nil {
		logger.Error("subscribe", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier listening", "subjects", []string{notify.SubjectWelcome, notify.SubjectCancellation})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("notifier stopped")
}
