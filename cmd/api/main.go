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

	"github.com/jwalitptl/hospital-api/internal/config"
	departmentHandler "github.com/jwalitptl/hospital-api/internal/handler/department"
	doctorHandler "github.com/jwalitptl/hospital-api/internal/handler/doctor"
	patientHandler "github.com/jwalitptl/hospital-api/internal/handler/patient"
	registrationHandler "github.com/jwalitptl/hospital-api/internal/handler/registration"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	departmentService "github.com/jwalitptl/hospital-api/internal/service/department"
	doctorService "github.com/jwalitptl/hospital-api/internal/service/doctor"
	patientService "github.com/jwalitptl/hospital-api/internal/service/patient"
	registrationService "github.com/jwalitptl/hospital-api/internal/service/registration"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.New("hospital")

	store, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer store.Close()

	// Services
	departmentSvc := departmentService.NewService(store.Departments())
	doctorSvc := doctorService.NewService(store.Doctors(), store.Departments())
	patientSvc := patientService.NewService(store.Patients())
	registrationSvc := registrationService.NewService(store,
		registrationService.WithLogger(appLogger),
		registrationService.WithMetrics(appMetrics),
	)

	// Router with all handlers registered under /api/v1
	r := router.New(router.Config{
		RateLimit:        100,
		RateBurst:        200,
		CORSConfig:       middleware.DefaultCORSConfig(),
		MetricsNamespace: "hospital",
	},
		departmentHandler.NewHandler(departmentSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		registrationHandler.NewHandler(registrationSvc),
	)

	// Outbox processor publishes registration lifecycle events to Redis.
	// Skipped when Redis is not configured so the API can run standalone.
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(cfg.Redis, &appLogger.ZL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()

		processor := worker.NewOutboxProcessor(store.Outbox(), broker, worker.OutboxProcessorConfig{
			BatchSize:    cfg.Outbox.BatchSize,
			PollInterval: cfg.Outbox.PollInterval(),
			Retention:    time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour,
		}, appLogger, appMetrics)
		go processor.Start(context.Background())
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}

func newStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.NewStore(), nil
	case "postgres", "":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
