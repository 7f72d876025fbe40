package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/ecom",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "Asia/Ho_Chi_Minh", cfg.VNPay.Timezone)
	require.Equal(t, 15*time.Minute, cfg.VNPay.ExpireAfter)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.True(t, cfg.SecureHeadersEnable)
	require.False(t, cfg.VNPay.Configured())
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = ":9090"
	env["VNP_TMNCODE"] = "TMN01"
	env["VNP_HASHSECRET"] = "hash"
	env["KAFKA_BROKERS"] = "k1:9092, k2:9092"
	env["SECURE_HEADERS_ENABLE"] = "false"
	env["WORKER_CONCURRENCY"] = "4"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.VNPay.Configured())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.False(t, cfg.SecureHeadersEnable)
	require.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	env["DATABASE_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}
