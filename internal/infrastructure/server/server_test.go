package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/apps"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Timezone = "UTC"
	cfg.GRPC.Enabled = false
	cfg.Sound.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *clock.Manual) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewManual(time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC))
	srv, err := NewServer(cfg, Options{
		Clock:    clk,
		Logger:   logging.NewNop(),
		Streamer: apps.Unavailable{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv, clk
}

func boot(srv *Server, clk *clock.Manual, cfg *config.Config) {
	srv.Desktop().Start()
	clk.Advance(cfg.Session.BootDuration.Std() + cfg.Session.BootFade.Std())
}

func TestNewServerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Timezone = "Mars/Olympus_Mons"

	_, err := NewServer(cfg, Options{Logger: logging.NewNop()})
	assert.Error(t, err)
}

func TestHandlerServesHealth(t *testing.T) {
	cfg := testConfig()
	srv, clk := newTestServer(t, cfg)
	boot(srv, clk, cfg)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandlerCompressesLargeResponses(t *testing.T) {
	cfg := testConfig()
	srv, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestHandlerAppliesCORS(t *testing.T) {
	cfg := testConfig()
	srv, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/apps", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandlerRateLimits(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	srv, _ := newTestServer(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	srv, _ := newTestServer(t, cfg)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis, nil) }()

	url := "http://" + lis.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, types.PhaseBooting, srv.Desktop().Session.Phase())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
