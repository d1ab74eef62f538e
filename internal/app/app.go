package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AppFriend/DrGolly-sub001/config"
	kafkactrl "github.com/AppFriend/DrGolly-sub001/internal/controller/kafka"
	"github.com/AppFriend/DrGolly-sub001/internal/controller/restapi"
	"github.com/AppFriend/DrGolly-sub001/internal/controller/worker/abandoned"
	infrakafka "github.com/AppFriend/DrGolly-sub001/internal/infrastructure/kafka"
	"github.com/AppFriend/DrGolly-sub001/internal/infrastructure/klaviyo"
	"github.com/AppFriend/DrGolly-sub001/internal/repo/persistent"
	"github.com/AppFriend/DrGolly-sub001/internal/repo/redislock"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase/carts"
	"github.com/AppFriend/DrGolly-sub001/internal/usecase/events"
	"github.com/AppFriend/DrGolly-sub001/pkg/httpserver"
	"github.com/AppFriend/DrGolly-sub001/pkg/kafka/consumer"
	"github.com/AppFriend/DrGolly-sub001/pkg/logger"
	"github.com/AppFriend/DrGolly-sub001/pkg/postgres"
	"github.com/AppFriend/DrGolly-sub001/pkg/redisclient"
	"github.com/AppFriend/DrGolly-sub001/pkg/s3client"
	"github.com/google/uuid"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// redis
	rc, err := redisclient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - redisclient.New: %w", err))
	}
	defer rc.Close()

	// s3 (dead-letter archive)
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// Delivery Client
	klaviyoClient, err := klaviyo.New(klaviyo.Config{
		APIKey:          cfg.Klaviyo.APIKey,
		BaseURL:         cfg.Klaviyo.BaseURL,
		Revision:        cfg.Klaviyo.Revision,
		MaxAttempts:     cfg.Klaviyo.MaxAttempts,
		BackoffBase:     cfg.Klaviyo.BackoffBase,
		BackoffCap:      cfg.Klaviyo.BackoffCap,
		HTTPTimeout:     cfg.Klaviyo.HTTPTimeout,
		ExtraDenyFields: cfg.Klaviyo.ExtraDenyFields,
	}, l)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - klaviyo.New: %w", err))
	}

	// Use-Case

	flags := events.Flags{
		Purchase:            cfg.Events.PurchaseEnabled,
		SubscriptionStarted: cfg.Events.SubscriptionStartedEnabled,
		CartAbandoned:       cfg.Events.CartAbandonedEnabled,
	}

	// events use-case (the producers)
	eventsUseCase := events.New(
		klaviyoClient,
		persistent.NewDeadLetterRepo(s3c, cfg.S3.Bucket),
		flags,
		cfg.App.Environment,
		cfg.App.BaseURL,
		cfg.Klaviyo.MaxAttempts,
		l,
	)

	// carts use-case
	cartsUseCase := carts.New(persistent.NewCartRepo(pg), l)

	// Abandoned Carts Worker
	abandonedWorker := abandoned.New(
		cartsUseCase,
		eventsUseCase,
		redislock.New(rc, uuid.NewString()),
		flags,
		l,
		cfg.AbandonedCarts.PollInterval,
		cfg.AbandonedCarts.InactivityThreshold,
		cfg.AbandonedCarts.ProcessBatchTimeout,
		cfg.AbandonedCarts.BatchSize,
		cfg.AbandonedCarts.LockTTL,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		eventsUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.Workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, eventsUseCase, l)

	// Start Components
	err = abandonedWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - abandonedWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	awShutdownCtx, awShutdownCancel := context.WithTimeout(ctx, cfg.AbandonedCarts.ShutdownTimeout)
	defer awShutdownCancel()
	err = abandonedWorker.Shutdown(awShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - abandonedWorker.Shutdown: %w", err))
	}

	kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
	defer kcShutdownCancel()
	err = kafkaController.Shutdown(kcShutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
	}
}
