// Package server exposes the HTTP API: uploads, record queries, analytics,
// the change-event stream, and operator endpoints.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasecure/idverify/internal/classifier"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/export"
	"github.com/pasecure/idverify/internal/extraction"
	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/reconcile"
	"github.com/pasecure/idverify/internal/repository"
	"github.com/pasecure/idverify/internal/storage"
)

// Server wires the HTTP layer to the pipeline components.
type Server struct {
	records    repository.VerificationRepository
	logs       repository.LogRepository
	settings   repository.SettingsRepository
	store      storage.ObjectStore
	classifier *classifier.Classifier
	controller *reconcile.Controller
	worker     *extraction.Worker
	exporter   *export.Service
	hub        *notify.Hub
	upload     common.UploadConfig
	logger     *slog.Logger
}

type Deps struct {
	Records    repository.VerificationRepository
	Logs       repository.LogRepository
	Settings   repository.SettingsRepository
	Store      storage.ObjectStore
	Classifier *classifier.Classifier
	Controller *reconcile.Controller
	Worker     *extraction.Worker
	Exporter   *export.Service
	Hub        *notify.Hub
	Upload     common.UploadConfig
	Logger     *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		records:    deps.Records,
		logs:       deps.Logs,
		settings:   deps.Settings,
		store:      deps.Store,
		classifier: deps.Classifier,
		controller: deps.Controller,
		worker:     deps.Worker,
		exporter:   deps.Exporter,
		hub:        deps.Hub,
		upload:     deps.Upload,
		logger:     logger,
	}
}

// Router builds the gin engine with the full middleware chain and routes.
func (s *Server) Router(cfg common.ServerConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(Recovery(s.logger))
	r.Use(RequestLogger(s.logger))
	if cfg.RateLimit > 0 {
		r.Use(RateLimit(cfg.RateLimit, cfg.RateWindow, s.logger))
	}

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/verifications", s.handleUpload)
		api.GET("/verifications", s.handleList)
		api.GET("/verifications/:id", s.handleGet)
		api.POST("/worker/run", s.handleWorkerRun)
		api.GET("/analytics", s.handleAnalytics)
		api.GET("/analytics/insights", s.handleInsights)
		api.GET("/logs", s.handleLogs)
		api.GET("/settings", s.handleSettings)
		api.PUT("/settings/:key", s.handleSetSetting)
		api.GET("/export", s.handleExport)
		api.GET("/events", s.handleEvents)
	}
	return r
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// down within the grace period.
func (s *Server) ListenAndServe(ctx context.Context, cfg common.ServerConfig) error {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Router(cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	grace := cfg.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	s.logger.Info("server.shutting_down", "grace", grace)
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
