package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medremind/reminder-api/internal/config"
	"github.com/medremind/reminder-api/internal/handler"
	authHandler "github.com/medremind/reminder-api/internal/handler/auth"
	dependantHandler "github.com/medremind/reminder-api/internal/handler/dependant"
	medicationHandler "github.com/medremind/reminder-api/internal/handler/medication"
	taskHandler "github.com/medremind/reminder-api/internal/handler/task"
	"github.com/medremind/reminder-api/internal/middleware"
	"github.com/medremind/reminder-api/internal/repository/postgres"
	"github.com/medremind/reminder-api/internal/router"
	authService "github.com/medremind/reminder-api/internal/service/auth"
	calendarService "github.com/medremind/reminder-api/internal/service/calendar"
	dependantService "github.com/medremind/reminder-api/internal/service/dependant"
	medicationService "github.com/medremind/reminder-api/internal/service/medication"
	taskService "github.com/medremind/reminder-api/internal/service/task"
	jwtauth "github.com/medremind/reminder-api/pkg/auth"
	"github.com/medremind/reminder-api/pkg/logger"
	"github.com/medremind/reminder-api/pkg/metrics"
	"github.com/medremind/reminder-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("medremind", "api")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	caregiverRepo := postgres.NewCaregiverRepository(db)
	dependantRepo := postgres.NewDependantRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	completionRepo := postgres.NewCompletionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	jwtSvc := jwtauth.NewJWTService(jwtauth.JWTConfig{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	authSvc := authService.NewService(caregiverRepo, jwtSvc)

	var encryptor security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		encryptor, err = security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid encryption key")
		}
	}
	dependantSvc := dependantService.NewService(dependantRepo, medicationRepo, encryptor)
	medicationSvc := medicationService.NewService(
		medicationRepo, scheduleRepo, completionRepo, dependantRepo, outboxRepo,
		appLogger, appMetrics)
	taskSvc := taskService.NewService(
		dependantRepo, medicationRepo, scheduleRepo, completionRepo,
		appLogger, appMetrics,
		cfg.Aggregation.BranchTimeout, cfg.Aggregation.CacheTTL)
	calendarSvc := calendarService.NewService()

	// Handlers
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	dependantH := dependantHandler.NewHandler(dependantSvc, taskSvc)
	medicationH := medicationHandler.NewHandler(medicationSvc)
	taskH := taskHandler.NewHandler(taskSvc, calendarSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		dependantH,
		medicationH,
		taskH,
		h,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "medremind_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
