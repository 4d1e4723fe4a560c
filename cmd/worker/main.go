package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docbook/docbook-api/internal/config"
	"github.com/docbook/docbook-api/internal/email"
	"github.com/docbook/docbook-api/internal/repository/postgres"
	internalworker "github.com/docbook/docbook-api/internal/worker"
	"github.com/docbook/docbook-api/pkg/logger"
	"github.com/docbook/docbook-api/pkg/messaging/redis"
	"github.com/docbook/docbook-api/pkg/metrics"
	"github.com/docbook/docbook-api/pkg/worker"
)

func main() {
	_ = godotenv.Load()

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	lg := logger.NewLogger(nil)

	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewBroker(redis.Config{URL: cfg.RedisURL}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.New("docbook_worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.OutboxBatchSize,
			PollInterval:  cfg.OutboxPollInterval,
			RetryAttempts: cfg.OutboxRetryAttempts,
			RetryDelay:    cfg.OutboxRetryDelay,
		},
		lg,
		m,
	)

	var emailSvc email.Service
	if cfg.SMTPEnabled() {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		lg.Warn("SMTP not configured, notifications will be dropped")
		emailSvc = email.NoopService{}
	}

	notifier := internalworker.NewNotifier(broker, emailSvc, lg, m)

	startHealthCheck(cfg.HealthPort, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Start(ctx); err != nil {
			lg.Error(err, "Notifier failed")
			cancel()
		}
	}()
	wg.Wait()
}

func startHealthCheck(port int, lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			lg.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
}
