package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productdocs "meshdemo/docs/product"
	"meshdemo/internal/config"
	"meshdemo/internal/http/handler"
	"meshdemo/internal/http/middleware"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		ServiceName:        "product-service",
		Port:               8080,
		ShutdownTimeoutSec: 1,
		ReadTimeoutSec:     5,
		WriteTimeoutSec:    5,
		MetricsEnabled:     true,
		SwaggerEnabled:     true,
	}
}

func newTestServer(t *testing.T, cfg *config.AppConfig, logs *bytes.Buffer) *Server {
	t.Helper()
	s, err := New(cfg, zerolog.New(logs), Options{
		Routes:   handler.RegisterProductRoutes,
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_RequiresRoutes(t *testing.T) {
	s, err := New(testConfig(), zerolog.Nop(), Options{})
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestServer_ServiceRoutes(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, testConfig(), &logs)

	resp, body := get(t, s.App(), "/api/products/stats")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"message":"Product data"}`, body)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Contains(t, logs.String(), `"path":"/api/products/stats"`)
}

func TestServer_NotFoundUsesEnvelope(t *testing.T) {
	s := newTestServer(t, testConfig(), &bytes.Buffer{})

	resp, body := get(t, s.App(), "/nonexistent")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"code":"NOT_FOUND"`)
}

func TestServer_HealthEndpoints(t *testing.T) {
	s := newTestServer(t, testConfig(), &bytes.Buffer{})
	require.True(t, s.Ready())

	resp, _ := get(t, s.App(), LivenessPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, s.App(), ReadinessPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready"}`, body)

	s.Drain()
	assert.False(t, s.Ready())

	resp, body = get(t, s.App(), ReadinessPath)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "SERVICE_UNAVAILABLE")

	// Liveness is unaffected by draining.
	resp, _ = get(t, s.App(), LivenessPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, testConfig(), &bytes.Buffer{})

	get(t, s.App(), "/api/products/42")

	resp, body := get(t, s.App(), middleware.MetricsPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/products/*",status="200"} 1`)
	assert.Contains(t, body, "http_request_duration_seconds")
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	s := newTestServer(t, cfg, &bytes.Buffer{})

	resp, _ := get(t, s.App(), middleware.MetricsPath)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_DefaultRegistry(t *testing.T) {
	s, err := New(testConfig(), zerolog.Nop(), Options{Routes: handler.RegisterOrderRoutes})
	require.NoError(t, err)

	resp, body := get(t, s.App(), middleware.MetricsPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_SwaggerWithoutDocs(t *testing.T) {
	s := newTestServer(t, testConfig(), &bytes.Buffer{})

	resp, _ := get(t, s.App(), "/swagger/index.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SwaggerDocs(t *testing.T) {
	s, err := New(testConfig(), zerolog.Nop(), Options{
		Routes:   handler.RegisterProductRoutes,
		Docs:     productdocs.SwaggerInfo,
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	resp, body := get(t, s.App(), "/swagger/doc.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Host  string                    `json:"host"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Contains(t, doc.Paths, "/api/products/stats")
	assert.Contains(t, doc.Paths, "/api/products/{path}")
	assert.Equal(t, "example.com", doc.Host)

	resp, _ = get(t, s.App(), "/swagger/index.html")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_InjectsHeader(t *testing.T) {
	echo := func(r fiber.Router) {
		r.Get("/echo", func(c *fiber.Ctx) error {
			return c.SendString(c.Get("x-mesh-demo"))
		})
	}

	cfg := testConfig()
	cfg.CustomHeader = "x-mesh-demo:on"
	s, err := New(cfg, zerolog.Nop(), Options{Routes: echo, Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	_, body := get(t, s.App(), "/echo")
	assert.Equal(t, "on", body)
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, testConfig(), &logs)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := fmt.Sprintf("http://%s%s", ln.Addr().String(), LivenessPath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	require.True(t, s.Ready())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.Ready())
	assert.Contains(t, logs.String(), "readiness_drained")
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	s := newTestServer(t, cfg, &bytes.Buffer{})

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
	assert.True(t, s.Ready())
}

func TestServer_ReadyCheck(t *testing.T) {
	var logs bytes.Buffer
	healthy := true
	s, err := New(testConfig(), zerolog.New(&logs), Options{
		Routes:   handler.RegisterProductRoutes,
		Registry: prometheus.NewRegistry(),
		ReadyCheck: func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("db unreachable")
		},
	})
	require.NoError(t, err)

	resp, _ := get(t, s.App(), ReadinessPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy = false
	resp, _ = get(t, s.App(), ReadinessPath)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, logs.String(), "readiness_check_failed")

	// Liveness does not depend on the check.
	resp, _ = get(t, s.App(), LivenessPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
