package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/noah-isme/ecom-api/internal/app"
	"github.com/noah-isme/ecom-api/internal/common"
	"github.com/noah-isme/ecom-api/internal/config"
	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/db/memdb"
	"github.com/noah-isme/ecom-api/internal/events"
	"github.com/noah-isme/ecom-api/internal/payment/vnpay"
	"github.com/noah-isme/ecom-api/internal/ratelimit"
)

type okChecker struct{}

func (okChecker) PingDB(context.Context, time.Duration) error    { return nil }
func (okChecker) PingRedis(context.Context, time.Duration) error { return nil }

type apiFixture struct {
	handler http.Handler
	svcs    app.Services
	db      *memdb.Store
	buyer   int64
	seller  int64
	store   int64
	product int64
}

func newAPIFixture(t *testing.T, paymentRate string) apiFixture {
	t.Helper()
	return newLimitedAPIFixture(t, paymentRate, "")
}

// newLimitedAPIFixture also installs the default per-user limiter when
// defaultRate is set.
func newLimitedAPIFixture(t *testing.T, paymentRate, defaultRate string) apiFixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := memdb.New()
	seller := db.AddUser("seller@example.com", dbgen.UserRoleSELLER)
	store := db.AddStore(seller, "Shop")
	buyer := db.AddUser("buyer@example.com", dbgen.UserRoleUSER)
	product := db.AddProduct(store, "Ao dai", decimal.NewFromInt(250000), decimal.NullDecimal{})

	gateway, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    "DEMO1234",
		HashSecret: "ROUTESECRET",
		ReturnURL:  "https://api.example/api/v1/payment/return",
	})
	require.NoError(t, err)

	svcs, err := app.BuildServices(app.ServiceDeps{
		Config:  &config.Config{JWTSecret: "routes-secret", AccessTokenTTL: time.Minute, LockTTL: time.Second},
		Logger:  zerolog.Nop(),
		Queries: db,
		DB:      db,
		Redis:   rdb,
		Events:  &events.Bus{Store: db},
		Gateway: gateway,
	})
	require.NoError(t, err)

	paymentLimiter, err := ratelimit.New(memory.NewStore(), paymentRate)
	require.NoError(t, err)
	var defaultLimiter ratelimit.Limiter
	if defaultRate != "" {
		defaultLimiter, err = ratelimit.New(memory.NewStore(), defaultRate)
		require.NoError(t, err)
	}

	handler := newRouter(routerConfig{
		Logger:              zerolog.Nop(),
		Services:            svcs,
		Health:              okChecker{},
		Redis:               rdb,
		DefaultLimiter:      defaultLimiter,
		PaymentLimiter:      paymentLimiter,
		BodyLimitBytes:      1 << 16,
		SecureHeaders:       true,
		FrontendRedirectURL: "https://shop.example/payment/result",
	})
	return apiFixture{handler: handler, svcs: svcs, db: db, buyer: buyer, seller: seller, store: store, product: product}
}

func (f apiFixture) token(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, _, err := f.svcs.Auth.IssueAccessToken(userID, role)
	require.NoError(t, err)
	return tok
}

func (f apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Data
}

func TestHealthRoutes(t *testing.T) {
	f := newAPIFixture(t, "10-M")
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", "", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/ready", "", "").Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t, "10-M")
	for _, path := range []string{"/api/v1/cart", "/api/v1/orders/my", "/api/v1/orders/1"} {
		rr := f.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestCartToOrderFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t, "10-M")
	buyerToken := f.token(t, f.buyer, common.RoleUser)

	rr := f.do(t, http.MethodPost, "/api/v1/cart/items", buyerToken, `{"productId":"`+common.FormatID(f.product)+`","qty":2}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = f.do(t, http.MethodPost, "/api/v1/orders", buyerToken, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeData(t, rr)
	require.Equal(t, "pending", created["status"])
	require.Equal(t, "500000", created["total"])
	orderID := created["id"].(string)

	rr = f.do(t, http.MethodGet, "/api/v1/orders/my", buyerToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-Total-Count"))

	rr = f.do(t, http.MethodGet, "/api/v1/orders/"+orderID+"/status", buyerToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "pending", decodeData(t, rr)["status"])

	storePath := "/api/v1/orders/store/" + common.FormatID(f.store)
	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, storePath, buyerToken, "").Code)
	sellerToken := f.token(t, f.seller, common.RoleSeller)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, storePath, sellerToken, "").Code)

	rr = f.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", sellerToken, `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "cancelled", decodeData(t, rr)["status"])
}

func TestEmptyCartCheckoutOverHTTP(t *testing.T) {
	f := newAPIFixture(t, "10-M")
	rr := f.do(t, http.MethodPost, "/api/v1/orders", f.token(t, f.buyer, common.RoleUser), "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "EMPTY_CART")
}

func TestIdempotencyKeyOnAddItem(t *testing.T) {
	f := newAPIFixture(t, "10-M")
	tok := f.token(t, f.buyer, common.RoleUser)
	body := `{"productId":` + common.FormatID(f.product) + `,"qty":1}`

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set(common.IdempotencyHeader, "add-1")
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, req)
		return rr.Code
	}
	require.Equal(t, http.StatusCreated, send())
	require.Equal(t, http.StatusConflict, send())
	require.Equal(t, 1, f.db.CartItemCount(f.buyer))
}

func TestPaymentCreateURLIsRateLimited(t *testing.T) {
	f := newAPIFixture(t, "1-M")
	tok := f.token(t, f.buyer, common.RoleUser)
	orderID := f.db.AddOrder(f.buyer, f.store, decimal.NewFromInt(250000), dbgen.OrderStatusPending)
	body := `{"orderId":"` + common.FormatID(orderID) + `","amount":250000}`

	rr := f.do(t, http.MethodPost, "/api/v1/payment/create-url", tok, body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.True(t, strings.HasPrefix(decodeData(t, rr)["paymentUrl"].(string), "https://sandbox.vnpayment.vn/"))

	rr = f.do(t, http.MethodPost, "/api/v1/payment/create-url", tok, body)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestPaymentCallbacksArePublic(t *testing.T) {
	f := newAPIFixture(t, "10-M")

	rr := f.do(t, http.MethodGet, "/api/v1/payment/notify?vnp_TxnRef=1_abc&vnp_SecureHash=00", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var ack map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ack))
	require.Equal(t, vnpay.RspInvalidChecksum, ack["RspCode"])

	rr = f.do(t, http.MethodGet, "/api/v1/payment/return?vnp_TxnRef=1_abc", "", "")
	require.Equal(t, http.StatusFound, rr.Code)
	require.True(t, strings.HasPrefix(rr.Header().Get("Location"), "https://shop.example/payment/result?"))
}

func TestPaymentCallbacksIgnoreDefaultLimiter(t *testing.T) {
	f := newLimitedAPIFixture(t, "10-M", "1-M")

	for i := 0; i < 3; i++ {
		rr := f.do(t, http.MethodGet, "/api/v1/payment/return?vnp_TxnRef=1_abc", "", "")
		require.Equal(t, http.StatusFound, rr.Code, "return call %d", i+1)
		require.NotEmpty(t, rr.Header().Get("Location"))

		rr = f.do(t, http.MethodGet, "/api/v1/payment/notify?vnp_TxnRef=1_abc&vnp_SecureHash=00", "", "")
		require.Equal(t, http.StatusOK, rr.Code, "notify call %d", i+1)
		var ack map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ack))
		require.Equal(t, vnpay.RspInvalidChecksum, ack["RspCode"])
	}

	// authenticated routes still share the default budget
	tok := f.token(t, f.buyer, common.RoleUser)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/cart", tok, "").Code)
	require.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodGet, "/api/v1/cart", tok, "").Code)
}
