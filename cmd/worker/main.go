package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/medremind/reminder-api/internal/config"
	"github.com/medremind/reminder-api/internal/email"
	"github.com/medremind/reminder-api/internal/repository/postgres"
	taskService "github.com/medremind/reminder-api/internal/service/task"
	"github.com/medremind/reminder-api/pkg/logger"
	messagingredis "github.com/medremind/reminder-api/pkg/messaging/redis"
	"github.com/medremind/reminder-api/pkg/metrics"
	"github.com/medremind/reminder-api/pkg/worker"
)

// WorkerConfig is read from the environment; the worker runs without the
// API's config file.
type WorkerConfig struct {
	DatabaseHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DB_USER" required:"true"`
	DatabasePassword string        `envconfig:"DB_PASSWORD" required:"true"`
	DatabaseName     string        `envconfig:"DB_NAME" required:"true"`
	DatabaseSSLMode  string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	OutboxBatchSize  int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPoll       time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxRetries    int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	OutboxRetryDelay time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"2s"`
	OutboxRetention  time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`
	DigestInterval   time.Duration `envconfig:"DIGEST_INTERVAL" default:"4h"`
	BranchTimeout    time.Duration `envconfig:"AGGREGATION_BRANCH_TIMEOUT" default:"5s"`
	SMTPHost         string        `envconfig:"SMTP_HOST"`
	SMTPPort         int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername     string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string        `envconfig:"SMTP_PASSWORD"`
	SMTPFrom         string        `envconfig:"SMTP_FROM" default:"reminders@medremind.io"`
}

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	var cfg WorkerConfig
	if err := envconfig.Process("medremind", &cfg); err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("medremind", "worker")

	dependantRepo := postgres.NewDependantRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	completionRepo := postgres.NewCompletionRepository(db)
	caregiverRepo := postgres.NewCaregiverRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	brokerLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, &brokerLogger, appMetrics)
	if err != nil {
		zapLogger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer broker.Close()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.OutboxBatchSize,
		PollInterval:  cfg.OutboxPoll,
		RetryAttempts: cfg.OutboxRetries,
		RetryDelay:    cfg.OutboxRetryDelay,
		RetentionAge:  cfg.OutboxRetention,
	}, appLogger, appMetrics)

	taskSvc := taskService.NewService(
		dependantRepo, medicationRepo, scheduleRepo, completionRepo,
		appLogger, appMetrics, cfg.BranchTimeout, time.Minute)

	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	digest := worker.NewDigestWorker(caregiverRepo, taskSvc, sender,
		worker.DigestConfig{Interval: cfg.DigestInterval}, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	go outboxProcessor.Start(ctx)
	if cfg.SMTPHost != "" {
		go digest.Start(ctx)
	} else {
		zapLogger.Info("SMTP host not set, overdue digest disabled")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down worker")
	cancel()
}
