package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-room-bookings/internal/audit"
	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/ariefcatur/go-room-bookings/internal/config"
	kafkax "github.com/ariefcatur/go-room-bookings/internal/kafka"
	"github.com/ariefcatur/go-room-bookings/internal/logger"
	"github.com/ariefcatur/go-room-bookings/internal/postgres"
	"github.com/ariefcatur/go-room-bookings/internal/redisx"
)

func main() {
	log := logger.New().With(logger.F("COMPONENT", "audit"))
	if err := run(log); err != nil {
		log.Error("audit consumer exit", logger.Error(err))
		os.Exit(1)
	}
	log.Info("audit consumer stopped")
}

func run(log *logger.Logger) error {
	cfg, err := config.LoadWithFile(".env")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required for the audit consumer")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	svc := &audit.Service{
		Recorder:    &bookings.AuditRepo{DB: db},
		Log:         log,
		ServiceName: cfg.ServiceName + "-audit",
	}

	// Redis
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer func() { _ = rdb.Close() }()
		svc.Redis = rdb
		svc.Cache = &redisx.ListCache{RDB: rdb, Log: log}
	}

	cons := kafkax.NewConsumer(brokers, cfg.AuditGroup, bookings.TopicBookingEvents, cfg.AuditWorkers, log)
	log.Info("audit consumer started",
		logger.F("GROUP", cfg.AuditGroup),
		logger.F("TOPIC", bookings.TopicBookingEvents),
		logger.F("WORKERS", cfg.AuditWorkers),
	)
	return cons.Start(ctx, svc.HandleBookingEvent)
}
