// verifyd is the verification pipeline daemon: it serves the HTTP API and
// runs the background recognition worker.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pasecure/idverify/internal/classifier"
	"github.com/pasecure/idverify/internal/common"
	"github.com/pasecure/idverify/internal/export"
	"github.com/pasecure/idverify/internal/extraction"
	"github.com/pasecure/idverify/internal/notify"
	"github.com/pasecure/idverify/internal/recognition"
	"github.com/pasecure/idverify/internal/reconcile"
	"github.com/pasecure/idverify/internal/repository"
	"github.com/pasecure/idverify/internal/server"
	"github.com/pasecure/idverify/internal/storage"
)

func main() {
	cfg := common.LoadConfig()
	common.InitLogger(common.LogConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	logger := slog.Default()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.EnsureSchema(ctx, pool, logger); err != nil {
		logger.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		logger.Error("object store setup failed", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("bucket setup failed", "error", err)
		os.Exit(1)
	}

	records := repository.NewVerificationRepository(pool, logger)
	logs := repository.NewLogRepository(pool, logger)
	settings := repository.NewSettingsRepository(pool, logger)

	applySettingsOverrides(ctx, settings, &cfg.Upload, logger)

	hub := notify.NewHub()
	controller := reconcile.NewController(records, hub, logger)
	cls := classifier.New(classifier.NewHTTPModel(cfg.Model.ScoringURL, cfg.Model.Timeout, logger), logger)
	recognizer := recognition.NewClient(cfg.Recognition.URL, cfg.Recognition.Timeout, logger)
	worker := extraction.NewWorker(records, logs, store, recognizer, controller, hub, logger)
	exporter := export.NewService(records, logger)

	go worker.Run(ctx, cfg.Server.PollInterval)

	srv := server.New(server.Deps{
		Records:    records,
		Logs:       logs,
		Settings:   settings,
		Store:      store,
		Classifier: cls,
		Controller: controller,
		Worker:     worker,
		Exporter:   exporter,
		Hub:        hub,
		Upload:     cfg.Upload,
		Logger:     logger,
	})
	if err := srv.ListenAndServe(ctx, cfg.Server); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// applySettingsOverrides lets the settings table override the env-configured
// upload limits without a restart of the environment.
func applySettingsOverrides(ctx context.Context, settings repository.SettingsRepository, upload *common.UploadConfig, logger *slog.Logger) {
	all, err := settings.All(ctx)
	if err != nil {
		logger.Warn("settings load failed, using environment defaults", "error", err)
		return
	}
	for _, s := range all {
		switch s.Key {
		case "max_file_size":
			if n, err := strconv.ParseInt(s.Value, 10, 64); err == nil && n > 0 {
				upload.MaxFileSize = n
				logger.Info("settings override", "key", s.Key, "value", n)
			}
		case "allowed_file_types":
			parts := strings.Split(s.Value, ",")
			var types []string
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					types = append(types, p)
				}
			}
			if len(types) > 0 {
				upload.AllowedFileTypes = types
				logger.Info("settings override", "key", s.Key, "value", types)
			}
		}
	}
}
