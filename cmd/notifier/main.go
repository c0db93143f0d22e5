package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"restaurant-service/internal/config"
	"restaurant-service/internal/consumer"
	"restaurant-service/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	reader := config.NewKafkaReader(cfg.Kafka)
	defer reader.Close()

	if cfg.SMTP.NotifyTo == "" {
		log.Warn().Msg("NOTIFY_EMAIL is not set, new restaurants will not be announced")
	}
	c := consumer.NewConsumer(reader, notify.NewSMTPMailer(cfg.SMTP), cfg.SMTP.NotifyTo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("Listening for restaurant events on %s", cfg.Kafka.Topic)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Consumer stopped")
	}
}
