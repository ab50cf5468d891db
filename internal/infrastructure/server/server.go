package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/WebDesk/backend/internal/api/http"
	"github.com/GriffinCanCode/WebDesk/backend/internal/api/middleware"
	"github.com/GriffinCanCode/WebDesk/backend/internal/api/ws"
	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/apps"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/registry"
	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/session"
	grpchealth "github.com/GriffinCanCode/WebDesk/backend/internal/grpc"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/sound"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/WebDesk/backend/internal/providers/gemini"
)

const shutdownGrace = 10 * time.Second

// Options overrides wiring for tests
type Options struct {
	Clock    clock.Clock
	Logger   *logging.Logger
	Streamer apps.Streamer
}

// Server wraps the HTTP and gRPC servers and the desktop they expose
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	cues    *sound.Dispatcher
	desktop *app.Desktop
	hub     *ws.Hub
	health  *grpchealth.HealthServer
	router  *gin.Engine
	handler http.Handler
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	logger.Info("Initializing WebDesk server",
		zap.String("port", cfg.Server.Port),
		zap.String("grpc_port", cfg.GRPC.Port),
		zap.Bool("sound", cfg.Sound.Enabled),
		zap.Bool("assistant", cfg.Chat.APIKey != ""),
	)

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Server.Timezone, err)
	}

	catalog, err := registry.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load app catalog: %w", err)
	}

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("webdesk", logger.Component("trace"))

	cues := sound.NewDispatcher(sound.Options{
		Enabled:   cfg.Sound.Enabled,
		QueueSize: cfg.Sound.QueueSize,
		Observer:  metrics,
	}, logger.Component("sound"))

	var bank *sound.Bank
	if cfg.Sound.Enabled {
		bank, err = sound.NewBank(cfg.Sound.Volume)
		if err != nil {
			logger.Warn("Sound cues unavailable", zap.Error(err))
			bank = nil
		}
	}

	streamer, breaker := newStreamer(cfg, opts.Streamer, metrics, logger)

	desktop := app.New(app.Options{
		Catalog: catalog,
		Cues:    cues,
		Clock:   opts.Clock,
		Timings: session.Timings{
			Boot:     cfg.Session.BootDuration.Std(),
			Fade:     cfg.Session.BootFade.Std(),
			Settle:   cfg.Session.ShutdownSettle.Std(),
			Fallback: cfg.Session.ShutdownFallback.Std(),
		},
		Streamer:    streamer,
		ChatTimeout: cfg.Chat.Timeout.Std(),
		Metrics:     metrics,
	}, logger.Logger)

	hub := ws.NewHub(desktop, ws.Options{
		Audio:    cues,
		Metrics:  metrics,
		Location: loc,
	}, logger.Component("ws"))
	cues.Subscribe(hub.PublishCue)

	var health *grpchealth.HealthServer
	if cfg.GRPC.Enabled {
		health = grpchealth.NewHealthServer(tracer, logger.Component("grpc"))
		health.Track(desktop.Session)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(desktop, apihttp.Options{
		Sounds:   bank,
		Metrics:  metrics,
		Breaker:  breaker,
		Location: loc,
	}, logger.Component("http")).Register(router)
	router.GET("/stream", hub.HandleConnection)

	if cfg.Server.StaticDir != "" {
		router.Static("/ui", cfg.Server.StaticDir)
	}

	handler, err := compress(router)
	if err != nil {
		return nil, err
	}

	logger.Info("Server initialized successfully")

	return &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		cues:    cues,
		desktop: desktop,
		hub:     hub,
		health:  health,
		router:  router,
		handler: handler,
	}, nil
}

// newStreamer picks the assistant backend. Without an API key every chat
// reply fails with the fallback text.
func newStreamer(cfg *config.Config, override apps.Streamer, metrics *monitoring.Metrics, logger *logging.Logger) (apps.Streamer, *resilience.Breaker) {
	if override != nil {
		return override, nil
	}
	if cfg.Chat.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, assistant replies will fail")
		return apps.Unavailable{}, nil
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:            cfg.Chat.APIKey,
		Model:             cfg.Chat.Model,
		Endpoint:          cfg.Chat.Endpoint,
		RequestsPerSecond: cfg.Chat.RequestsPerSecond,
		Observer:          metrics,
		OnBreakerChange: func(name string, _, to resilience.State) {
			metrics.SetBreakerState(name, int(to))
		},
	}, logger.Component("gemini"))
	metrics.SetBreakerState(client.Breaker().Name(), int(client.Breaker().State()))
	return client, client.Breaker()
}

// compress gzips everything except the WebSocket upgrade
func compress(router *gin.Engine) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("failed to build gzip wrapper: %w", err)
	}
	gz := wrap(router)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stream" {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	}), nil
}

// Handler returns the HTTP handler with compression applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Desktop returns the running desktop
func (s *Server) Desktop() *app.Desktop {
	return s.desktop
}

// Run starts the session and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	var grpcLis net.Listener
	if s.health != nil {
		grpcAddr := net.JoinHostPort(s.config.Server.Host, s.config.GRPC.Port)
		grpcLis, err = net.Listen("tcp", grpcAddr)
		if err != nil {
			lis.Close()
			return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
		}
	}

	return s.Serve(ctx, lis, grpcLis)
}

// Serve runs on the given listeners. grpcLis may be nil.
func (s *Server) Serve(ctx context.Context, lis, grpcLis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http serve: %w", err)
		}
	}()
	if s.health != nil && grpcLis != nil {
		go func() {
			if err := s.health.Serve(grpcLis); err != nil {
				errCh <- err
			}
		}()
	}

	hubDone := make(chan struct{})
	go func() {
		s.hub.Run(ctx)
		close(hubDone)
	}()

	s.desktop.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownGrace)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	<-hubDone

	return runErr
}

// Close releases background resources. Call after Run returns.
func (s *Server) Close() error {
	if s.health != nil {
		s.health.Stop()
	}
	s.desktop.Close()
	s.cues.Close()
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}
