package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecom-api/internal/app"
	"github.com/noah-isme/ecom-api/internal/cart"
	"github.com/noah-isme/ecom-api/internal/config"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "ecom"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.New(initCtx, cfg, logger, app.Options{ApplicationName: "ecom-worker"})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error().Err(err).Msg("close dependencies")
		}
	}()

	handler := &tasks.Handler{
		Cart:   &cart.Service{Q: deps.Queries},
		Logger: logger,
	}
	mux := asynq.NewServeMux()
	handler.Register(mux)

	srv := asynq.NewServer(deps.RedisConnOpt, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          asynqLogger{logger: logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warn().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}
	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(joinArgs(args)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(joinArgs(args)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(joinArgs(args)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(joinArgs(args)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(joinArgs(args)) }

func joinArgs(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, strings.TrimSpace(fmt.Sprint(a)))
	}
	return strings.Join(parts, " ")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
