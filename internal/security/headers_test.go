package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHeadersMiddlewareSetsSecurityHeaders(t *testing.T) {
	middleware := Headers{Enable: true, EnableHSTS: true, HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true}
	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	req.TLS = &tls.ConnectionState{}
	rr := httptest.NewRecorder()

	middleware.Middleware(okHandler()).ServeHTTP(rr, req)

	headers := rr.Result().Header
	require.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	require.Equal(t, "max-age=31536000; includeSubDomains", headers.Get("Strict-Transport-Security"))
	require.Empty(t, headers.Get("Cache-Control"))
}

func TestHeadersMiddlewareHonoursForwardedProto(t *testing.T) {
	middleware := Headers{Enable: true, EnableHSTS: true}
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()

	middleware.Middleware(okHandler()).ServeHTTP(rr, req)
	require.Equal(t, "max-age=31536000", rr.Header().Get("Strict-Transport-Security"))
}

func TestHeadersMiddlewareNoStore(t *testing.T) {
	middleware := Headers{Enable: true, NoStorePrefixes: []string{"/api/v1/payment"}}

	rr := httptest.NewRecorder()
	middleware.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/payment/return", nil))
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = httptest.NewRecorder()
	middleware.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Empty(t, rr.Header().Get("Cache-Control"))
}

func TestHeadersMiddlewareDisabled(t *testing.T) {
	middleware := Headers{Enable: false, EnableHSTS: true}
	rr := httptest.NewRecorder()
	middleware.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	require.Empty(t, rr.Header().Get("X-Content-Type-Options"))
}
