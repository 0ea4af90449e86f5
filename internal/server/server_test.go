package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/travelapp/restaurants/backend/go-services/internal/auth"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/service"
)

func init() { gin.SetMode(gin.TestMode) }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:    "test",
			RequestTimeout: 2 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
	}
}

func serve(h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndReady(t *testing.T) {
	h := New(Deps{Config: testConfig(), Service: service.NewMemoryService(), Pinger: pinger{}})
	require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", nil).Code)

	w := serve(h, http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"mongodb":true`)

	down := New(Deps{Config: testConfig(), Service: service.NewMemoryService(), Pinger: pinger{err: errors.New("no reachable servers")}})
	require.Equal(t, http.StatusServiceUnavailable, serve(down, http.MethodGet, "/ready", "", nil).Code)

	unconfigured := New(Deps{Config: testConfig(), Service: service.NewMemoryService()})
	require.Equal(t, http.StatusServiceUnavailable, serve(unconfigured, http.MethodGet, "/ready", "", nil).Code)
}

func TestRestaurantRoutesAndMetrics(t *testing.T) {
	h := New(Deps{Config: testConfig(), Service: service.NewMemoryService()})

	w := serve(h, http.MethodPost, "/", `{"restaurant_id":"R9","cuisine":"Thai"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
	require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/Restaurant/id/R9", "", nil).Code)

	w = serve(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `restaurants_operations_total{code="200",operation="create"}`)
	require.Contains(t, w.Body.String(), "restaurants_operation_duration_seconds")
}

func TestSwaggerMounted(t *testing.T) {
	h := New(Deps{Config: testConfig(), Service: service.NewMemoryService()})
	require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/swagger/doc.json", "", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := New(Deps{Config: testConfig(), Service: service.NewMemoryService()})
	w := serve(h, http.MethodOptions, "/Restaurant/id/R1", "", http.Header{
		"Origin":                        {"https://travel.example.com"},
		"Access-Control-Request-Method": {http.MethodPatch},
	})
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthEnabled(t *testing.T) {
	const secret = "server-test-secret-0123456789abcdef"
	s, err := mr.Run()
	require.NoError(t, err)
	defer s.Close()
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	revs := auth.NewRevocations(rdb, "")

	h := New(Deps{
		Config:      testConfig(),
		Service:     service.NewMemoryService(),
		Verifier:    auth.NewHMACVerifier(secret),
		Revocations: revs,
	})

	// health stays public
	require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/Restaurant/id/R1", "", nil).Code)

	token, jti, err := auth.GenerateToken(secret, "ops", time.Minute)
	require.NoError(t, err)
	bearer := http.Header{"Authorization": {"Bearer " + token}}
	require.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/Restaurant/id/R1", "", bearer).Code)

	require.NoError(t, revs.Revoke(context.Background(), jti, time.Minute))
	require.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/Restaurant/id/R1", "", bearer).Code)
}

func TestRateLimitEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	h := New(Deps{Config: cfg, Service: service.NewMemoryService()})

	require.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/Restaurant/id/R1", "", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodGet, "/Restaurant/id/R1", "", nil).Code)
	// health checks are not limited
	require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "", nil).Code)
}
