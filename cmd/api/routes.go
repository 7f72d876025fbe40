package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ecom-api/internal/app"
	"github.com/noah-isme/ecom-api/internal/auth"
	"github.com/noah-isme/ecom-api/internal/cart"
	"github.com/noah-isme/ecom-api/internal/checkout"
	"github.com/noah-isme/ecom-api/internal/common"
	"github.com/noah-isme/ecom-api/internal/health"
	"github.com/noah-isme/ecom-api/internal/obs"
	"github.com/noah-isme/ecom-api/internal/order"
	"github.com/noah-isme/ecom-api/internal/payment"
	"github.com/noah-isme/ecom-api/internal/ratelimit"
	"github.com/noah-isme/ecom-api/internal/security"
)

type routerConfig struct {
	Logger   zerolog.Logger
	Services app.Services
	Health   health.Checker
	// Redis backs Idempotency-Key handling. Nil disables it.
	Redis          *redis.Client
	IdempotencyTTL time.Duration

	DefaultLimiter ratelimit.Limiter
	PaymentLimiter ratelimit.Limiter

	CORSAllowedOrigins  []string
	BodyLimitBytes      int64
	SecureHeaders       bool
	FrontendRedirectURL string

	HTTPMetrics *obs.HTTPMetrics
	Metrics     http.Handler
	Pprof       http.Handler
}

func newRouter(rc routerConfig) http.Handler {
	svcs := rc.Services
	authMiddleware := auth.Middleware{Service: svcs.Auth}
	idem := common.Idem{R: rc.Redis, TTL: rc.IdempotencyTTL}
	onLimitErr := func(err error) {
		rc.Logger.Warn().Err(err).Msg("rate limiter unavailable")
	}
	userLimit := ratelimit.Handler{Limiter: rc.DefaultLimiter, Config: ratelimit.Config{Key: ratelimit.KeyByUser, Scope: "api"}, OnError: onLimitErr}
	paymentLimit := ratelimit.Handler{Limiter: rc.PaymentLimiter, Config: ratelimit.Config{Key: ratelimit.KeyByUser, Scope: "payment"}, OnError: onLimitErr}

	cartHandler := &cart.Handler{Svc: svcs.Cart}
	checkoutHandler := &checkout.Handler{Svc: svcs.Checkout}
	orderHandler := &order.Handler{Svc: svcs.Orders}
	paymentHandler := &payment.Handler{
		Svc:                 svcs.Payments,
		Reconciler:          svcs.Reconciler,
		FrontendRedirectURL: rc.FrontendRedirectURL,
	}
	healthHandler := health.Handler{Checker: rc.Health}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if rc.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: rc.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: rc.Logger}.Middleware)
	r.Use(security.Headers{
		Enable:          rc.SecureHeaders,
		EnableHSTS:      true,
		NoStorePrefixes: []string{"/api/v1/payment", "/api/v1/orders", "/api/v1/cart"},
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(rc.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", common.IdempotencyHeader, "X-Request-Id"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Request-Id", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: rc.BodyLimitBytes}.Middleware)

	if rc.Metrics != nil {
		r.Handle("/metrics", rc.Metrics)
	}
	if rc.Pprof != nil {
		r.Handle("/debug/pprof/*", rc.Pprof)
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		// Gateway callbacks are authenticated by signature, not by token, and
		// must always answer in the gateway's terms, so no limiter sits in front.
		v.Get("/payment/return", paymentHandler.Return)
		v.Get("/payment/notify", paymentHandler.Notify)

		v.Group(func(authR chi.Router) {
			authR.Use(authMiddleware.RequireAuth)
			authR.Use(userLimit.Middleware)

			authR.Route("/cart", func(c chi.Router) {
				c.Get("/", cartHandler.Get)
				c.Delete("/", cartHandler.Clear)
				c.With(idem.Middleware).Post("/items", cartHandler.AddItem)
				c.Put("/items/{itemID}", cartHandler.UpdateItem)
				c.Delete("/items/{itemID}", cartHandler.RemoveItem)
			})

			authR.Route("/orders", func(o chi.Router) {
				o.With(idem.Middleware).Post("/", checkoutHandler.Create)
				o.Get("/my", orderHandler.ListMine)
				o.With(auth.RequireRole(common.RoleSeller, common.RoleAdmin)).Get("/store/{storeID}", orderHandler.ListByStore)
				o.Get("/{orderID}", orderHandler.Get)
				o.Get("/{orderID}/status", orderHandler.Status)
				o.Patch("/{orderID}/status", orderHandler.PatchStatus)
			})

			authR.With(paymentLimit.Middleware, idem.Middleware).Post("/payment/create-url", paymentHandler.CreateURL)
		})
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
