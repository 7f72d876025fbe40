package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/ecom-api/internal/common"
)

// Limiter is satisfied by *limiter.Limiter.
type Limiter interface {
	Get(ctx context.Context, key string) (limiter.Context, error)
}

// NewRedisStore returns a limiter store shared by all API instances.
func NewRedisStore(client *redis.Client, prefix string) (limiter.Store, error) {
	if client == nil {
		return nil, fmt.Errorf("ratelimit: redis client not configured")
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix, MaxRetry: 3})
}

// New builds a limiter from a rate such as "10-M" or "300-H".
func New(store limiter.Store, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", formatted, err)
	}
	return limiter.New(store, rate), nil
}

// KeyByIP keys requests by client address.
func KeyByIP(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// KeyByUser keys authenticated requests by user id and falls back to the client address.
func KeyByUser(r *http.Request) string {
	if id, ok := common.UserID(r.Context()); ok {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return KeyByIP(r)
}
