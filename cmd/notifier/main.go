package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"farmverify/internal/config"
	"farmverify/internal/events"
	"farmverify/internal/logger"
)

// notifier consumes certification decisions and logs one line per decision.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("consuming", zap.String("queue", events.CertificationDecidedQueue))
	err = events.Consume(ctx, cfg.RabbitMQURL, log, func(_ context.Context, ev events.CertificationDecided) error {
		log.Info(ev.Message(),
			zap.String("farmer_id", ev.FarmerID),
			zap.String("status", string(ev.Status)),
			zap.String("email", ev.Email),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}
}
