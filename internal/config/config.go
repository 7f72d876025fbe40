package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	AccessTokenTTL     time.Duration
	CORSAllowedOrigins []string

	IdempotencyTTL   time.Duration
	LockTTL          time.Duration
	LockRetryBackoff time.Duration

	VNPay VNPay

	FrontendPaymentRedirectURL string

	KafkaBrokers     []string
	KafkaEventsTopic string

	RateLimitPayment    string
	RateLimitDefault    string
	BodyLimitBytes      int64
	ShutdownTimeout     time.Duration
	WorkerConcurrency   int
	SecureHeadersEnable bool
}

// VNPay holds the merchant credentials and endpoints for the payment gateway.
type VNPay struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	ReturnURL   string
	Timezone    string
	ExpireAfter time.Duration
}

// Configured reports whether the merchant credentials are present.
func (v VNPay) Configured() bool {
	return strings.TrimSpace(v.TmnCode) != "" && strings.TrimSpace(v.HashSecret) != ""
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:        strings.TrimSpace(k.String("JWT_AUDIENCE")),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "15m"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		LockTTL:            parseDuration(k.String("LOCK_TTL"), "10s"),
		LockRetryBackoff:   parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		VNPay: VNPay{
			TmnCode:     strings.TrimSpace(k.String("VNP_TMNCODE")),
			HashSecret:  strings.TrimSpace(k.String("VNP_HASHSECRET")),
			PayURL:      valueOrDefault(k.String("VNP_URL"), "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:   strings.TrimSpace(k.String("VNP_RETURNURL")),
			Timezone:    valueOrDefault(k.String("VNP_TIMEZONE"), "Asia/Ho_Chi_Minh"),
			ExpireAfter: parseDuration(k.String("VNP_EXPIRE_AFTER"), "15m"),
		},
		FrontendPaymentRedirectURL: valueOrDefault(k.String("FRONTEND_PAYMENT_REDIRECT_URL"), "http://localhost:3000/payment/result"),
		KafkaBrokers:               splitAndTrim(k.String("KAFKA_BROKERS")),
		KafkaEventsTopic:           valueOrDefault(k.String("KAFKA_TOPIC_EVENTS"), "ecom.domain-events"),
		RateLimitPayment:           valueOrDefault(k.String("RATE_LIMIT_PAYMENT"), "10-M"),
		RateLimitDefault:           valueOrDefault(k.String("RATE_LIMIT_DEFAULT"), "300-M"),
		BodyLimitBytes:             parseInt64(k.String("HTTP_BODY_LIMIT_BYTES"), 1<<20),
		ShutdownTimeout:            parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),
		WorkerConcurrency:          int(parseInt64(k.String("WORKER_CONCURRENCY"), 10)),
		SecureHeadersEnable:        parseBoolDefault(k.String("SECURE_HEADERS_ENABLE"), true),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt64(value string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
