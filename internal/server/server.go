package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/formfill/internal/api/http"
	"github.com/GriffinCanCode/formfill/internal/api/middleware"
	"github.com/GriffinCanCode/formfill/internal/domain/manager"
	"github.com/GriffinCanCode/formfill/internal/domain/refill"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/config"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formfill/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formfill/internal/providers/classifier"
	"github.com/GriffinCanCode/formfill/internal/providers/frames"
	"github.com/GriffinCanCode/formfill/internal/providers/htmlform"
	"github.com/GriffinCanCode/formfill/internal/providers/plusaddress"
	"github.com/GriffinCanCode/formfill/internal/providers/store"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	manager *manager.Manager
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing formfill server",
		zap.String("port", cfg.Server.Port),
		zap.Bool("profiles", cfg.Autofill.ProfileEnabled),
		zap.Bool("payments", cfg.Autofill.PaymentsEnabled),
		zap.Bool("ablation", cfg.Autofill.Ablation),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	records, err := openStore(cfg.Autofill.StoreFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Record store ready",
		zap.String("file", cfg.Autofill.StoreFile),
		zap.Int("records", records.Len()),
	)

	opts := manager.Options{
		Config:     cfg.Autofill,
		Store:      records,
		Classifier: classifier.NewHeuristic(),
		Driver:     frames.NewPolicyDriver(nil, logger),
		Scheduler:  refill.TimerScheduler{},
		Logger:     logger,
		Metrics:    metrics,
	}

	var plus *plusaddress.Client
	if cfg.PlusAddress.Enabled() {
		plus = plusaddress.NewClient(cfg.PlusAddress, logger)
		opts.PlusAddress = plus
		logger.Info("Plus address delegate enabled", zap.String("url", cfg.PlusAddress.URL))
	}

	mgr, err := manager.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	deps := apihttp.Deps{
		Manager:   mgr,
		Extractor: htmlform.NewExtractor(logger),
		Metrics:   metrics,
		Logger:    logger,
	}
	if plus != nil {
		deps.PlusAddress = plus
	}
	apihttp.RegisterRoutes(router, apihttp.NewHandlers(deps), registry)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		manager: mgr,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// openStore loads the record file, or starts empty when none is configured
func openStore(path string) (*store.Memory, error) {
	if path == "" {
		return store.NewMemory()
	}
	records, err := store.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return records, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	// Pending refill timers must not fire into a stopped server
	s.manager.Reset()

	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
	}

	_ = s.logger.Sync()
	return nil
}
