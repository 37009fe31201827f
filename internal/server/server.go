// Package server assembles the Fiber application shared by every service:
// header injection, tracing, request IDs, request logging, metrics, health checks and
// API docs, followed by the service's own route table.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"

	"meshdemo/internal/config"
	"meshdemo/internal/http/handler"
	"meshdemo/internal/http/middleware"
)

const (
	LivenessPath  = "/healthz"
	ReadinessPath = "/readyz"
	SwaggerPath   = "/swagger/*"
)

// Options carries the per-service parts of the application.
type Options struct {
	// Routes registers the service route table. Registration order is match order.
	Routes func(fiber.Router)
	// Docs is the swag spec served under /swagger. Optional.
	Docs *swag.Spec
	// Registry receives the HTTP metrics. A fresh registry with Go and process
	// collectors is created when nil.
	Registry *prometheus.Registry
	// ReadyCheck, when set, must also pass for the readiness check to succeed.
	ReadyCheck func(context.Context) error
}

// NewRegistry returns a Prometheus registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Server is a configured stub service ready to listen.
type Server struct {
	app   *fiber.App
	cfg   *config.AppConfig
	log   zerolog.Logger
	ready atomic.Bool
}

// New builds the Fiber application. It does not start listening.
func New(cfg *config.AppConfig, log zerolog.Logger, opts Options) (*Server, error) {
	if opts.Routes == nil {
		return nil, errors.New("server: routes are required")
	}

	s := &Server{cfg: cfg, log: log}

	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		ErrorHandler:          handler.ErrorHandler(),
		ReadTimeout:           cfg.ReadTimeout(),
		WriteTimeout:          cfg.WriteTimeout(),
		DisableStartupMessage: true,
	})

	app.Use(middleware.InjectHeader(cfg.CustomHeader, log))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(isOperational)))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))

	if cfg.MetricsEnabled {
		reg := opts.Registry
		if reg == nil {
			reg = NewRegistry()
		}
		prom, err := middleware.NewPrometheusMiddleware(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		app.Use(prom.Handler())
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Get(LivenessPath, handler.LivenessHandler())
	app.Get(ReadinessPath, handler.ReadinessHandler(s.readiness(opts.ReadyCheck)))

	if cfg.SwaggerEnabled && opts.Docs != nil {
		app.Get(SwaggerPath, swaggerHandler(opts.Docs))
	}

	opts.Routes(app)

	s.app = app
	s.ready.Store(true)
	return s, nil
}

// App exposes the underlying Fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Ready reports whether the readiness check currently passes.
func (s *Server) Ready() bool {
	return s.ready.Load()
}

func (s *Server) readiness(check func(context.Context) error) func() bool {
	if check == nil {
		return s.ready.Load
	}
	return func() bool {
		if !s.ready.Load() {
			return false
		}
		if err := check(context.Background()); err != nil {
			s.log.Warn().Err(err).Msg("readiness_check_failed")
			return false
		}
		return true
	}
}

// Drain fails the readiness check so the mesh stops routing new traffic here.
func (s *Server) Drain() {
	if s.ready.CompareAndSwap(true, false) {
		s.log.Info().Msg("readiness_drained")
	}
}

// Run listens on the configured address until ctx is cancelled, then drains and
// shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("http server started")
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.Drain()
	s.log.Info().Dur("timeout", s.cfg.ShutdownTimeout()).Msg("shutdown...")

	shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.app.ShutdownWithContext(shCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// isOperational reports health and scrape requests, which are not traced.
func isOperational(c *fiber.Ctx) bool {
	switch c.Path() {
	case LivenessPath, ReadinessPath, middleware.MetricsPath:
		return true
	}
	return false
}

// swaggerHandler serves the Swagger UI with host and scheme taken from the
// request, so the docs work behind the ingress gateway.
func swaggerHandler(docs *swag.Spec) fiber.Handler {
	var mu sync.Mutex
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		mu.Lock()
		defer mu.Unlock()
		docs.Host = c.Get("Host")
		docs.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
