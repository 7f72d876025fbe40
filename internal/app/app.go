// Package app wires infrastructure clients and domain services shared by the
// API and worker binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/ecom-api/internal/auth"
	"github.com/noah-isme/ecom-api/internal/cart"
	"github.com/noah-isme/ecom-api/internal/checkout"
	"github.com/noah-isme/ecom-api/internal/config"
	"github.com/noah-isme/ecom-api/internal/db"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/lock"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/order"
	"github.com/noah-isme/ecom-api/internal/payment"
	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
	"github.com/noah-isme/ecom-api/internal/resilience"
	"github.com/noah-isme/ecom-api/internal/tasks"
)

// Options tweaks infrastructure set-up per binary.
type Options struct {
	// ApplicationName is reported to Postgres as application_name.
	ApplicationName string
	RedisMetrics    bool
}

// Dependencies holds the long-lived clients of one process.
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	Queries *dbgen.Queries
	Redis   *redis.Client
	// RedisConnOpt is the asynq view of the same Redis deployment.
	RedisConnOpt asynq.RedisConnOpt
	Tasks        *asynq.Client
	Kafka        *kafka.Writer
	Events       *events.Bus
	Gateway      *vnpay.Client

	closers []func() error
}

// New connects to Postgres and Redis and prepares the task client, event bus
// and payment gateway. Callers must Close the result.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	d := &Dependencies{Config: cfg, Logger: logger}

	pool, err := newPool(ctx, cfg, opts.ApplicationName)
	if err != nil {
		return nil, err
	}
	d.Pool = pool
	d.Queries = dbgen.New(pool)
	d.closers = append(d.closers, func() error { pool.Close(); return nil })

	rdb, err := newRedis(ctx, cfg, logger, opts.RedisMetrics)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Redis = rdb
	d.closers = append(d.closers, rdb.Close)

	connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("parse redis uri for tasks: %w", err)
	}
	d.RedisConnOpt = connOpt
	d.Tasks = asynq.NewClient(connOpt)
	d.closers = append(d.closers, d.Tasks.Close)

	notifiers := []events.Notifier{events.LogNotifier{Logger: logger}}
	if len(cfg.KafkaBrokers) > 0 {
		d.Kafka = events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		d.closers = append(d.closers, d.Kafka.Close)
		notifiers = append(notifiers, events.GuardedNotifier{
			Next:    events.KafkaNotifier{Writer: d.Kafka},
			Breaker: resilience.NewBreaker("kafka", 5, 0.5, 30*time.Second).WithLogger(logger),
		})
	}
	d.Events = &events.Bus{Store: d.Queries, Notifiers: notifiers}

	if cfg.VNPay.Configured() {
		gateway, err := vnpay.NewClient(vnpay.Config{
			TmnCode:     cfg.VNPay.TmnCode,
			HashSecret:  cfg.VNPay.HashSecret,
			PayURL:      cfg.VNPay.PayURL,
			ReturnURL:   cfg.VNPay.ReturnURL,
			Timezone:    cfg.VNPay.Timezone,
			ExpireAfter: cfg.VNPay.ExpireAfter,
		})
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.Gateway = gateway
	} else {
		logger.Warn().Msg("vnpay credentials missing; payment endpoints will fail")
	}
	return d, nil
}

func newPool(ctx context.Context, cfg *config.Config, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if appName != "" {
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func newRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics bool) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Close releases clients in reverse order of creation.
func (d *Dependencies) Close() error {
	var joined error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			joined = errors.Join(joined, err)
		}
	}
	d.closers = nil
	return joined
}

// PingDB implements health.Checker.
func (d *Dependencies) PingDB(ctx context.Context, timeout time.Duration) error {
	if d == nil || d.Pool == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Pool.Ping(ctx)
}

// PingRedis implements health.Checker.
func (d *Dependencies) PingRedis(ctx context.Context, timeout time.Duration) error {
	if d == nil || d.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Redis.Ping(ctx).Err()
}

// Services groups the domain services built on top of Dependencies.
type Services struct {
	Auth       *auth.Service
	Cart       *cart.Service
	Checkout   *checkout.Service
	Orders     *order.Service
	Payments   *payment.Service
	Reconciler *payment.Reconciler
}

// Services builds the domain services.
func (d *Dependencies) Services() (Services, error) {
	return BuildServices(ServiceDeps{
		Config:  d.Config,
		Logger:  d.Logger,
		Queries: d.Queries,
		DB:      db.Runner{Pool: d.Pool, Q: d.Queries},
		Redis:   d.Redis,
		Tasks:   d.Tasks,
		Events:  d.Events,
		Gateway: d.Gateway,
	})
}

// TxRunner is implemented by db.Runner and the in-memory store used in tests.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbgen.Querier) error) error
}

// ServiceDeps is the subset of infrastructure the domain services need.
// Tests fill it with in-memory implementations.
type ServiceDeps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Queries dbgen.Querier
	DB      TxRunner
	Redis   *redis.Client
	Tasks   tasks.TaskClient
	Events  events.Emitter
	Gateway *vnpay.Client
}

// BuildServices wires domain services from deps.
func BuildServices(deps ServiceDeps) (Services, error) {
	cfg := deps.Config
	if cfg == nil {
		return Services{}, errors.New("app: config is required")
	}
	authSvc, err := auth.NewService(auth.Config{
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		Issuer:         cfg.JWTIssuer,
		Audience:       cfg.JWTAudience,
	})
	if err != nil {
		return Services{}, err
	}

	cartSvc := &cart.Service{Q: deps.Queries}
	checkoutSvc := &checkout.Service{
		DB:      deps.DB,
		LockTTL: cfg.LockTTL,
		Events:  deps.Events,
		Logger:  deps.Logger.With().Str("component", "checkout").Logger(),
	}
	if deps.Redis != nil {
		checkoutSvc.Lock = lock.Locker{R: deps.Redis, RetryBackoff: cfg.LockRetryBackoff, MaxWait: cfg.LockTTL}
	}

	paymentSvc := &payment.Service{
		Q:      deps.Queries,
		Logger: deps.Logger.With().Str("component", "payment").Logger(),
	}
	reconciler := &payment.Reconciler{
		DB:     deps.DB,
		Cart:   cartSvc,
		Events: deps.Events,
		Logger: deps.Logger.With().Str("component", "payment_callback").Logger(),
	}
	if deps.Gateway != nil {
		paymentSvc.Gateway = deps.Gateway
		reconciler.Verifier = deps.Gateway
	}
	if deps.Tasks != nil {
		reconciler.Retry = tasks.Enqueuer{Client: deps.Tasks}
	}

	return Services{
		Auth:     authSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders: &order.Service{
			Q:      deps.Queries,
			Events: deps.Events,
			Logger: deps.Logger.With().Str("component", "order").Logger(),
		},
		Payments:   paymentSvc,
		Reconciler: reconciler,
	}, nil
}
