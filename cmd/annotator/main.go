package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/annotator/internal/api"
	"github.com/MikeSquared-Agency/annotator/internal/bus"
	"github.com/MikeSquared-Agency/annotator/internal/config"
	"github.com/MikeSquared-Agency/annotator/internal/metrics"
	"github.com/MikeSquared-Agency/annotator/internal/session"
	"github.com/MikeSquared-Agency/annotator/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("annotator starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressSource, err := session.ParseProgressSource(cfg.ProgressSource)
	if err != nil {
		slog.Error("invalid PROGRESS_SOURCE", "error", err)
		os.Exit(1)
	}
	writePolicy, err := session.ParseWritePolicy(cfg.WritePolicy)
	if err != nil {
		slog.Error("invalid WRITE_POLICY", "error", err)
		os.Exit(1)
	}
	if writePolicy == session.WriteAppend {
		slog.Warn("append write policy re-appends rows on every save; re-labeling a row duplicates it")
	}

	m := metrics.New()
	opts := []session.ManagerOption{session.WithMetrics(m)}

	// Postgres archive (optional)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare archive schema", "error", err)
			os.Exit(1)
		}
		opts = append(opts, session.WithArchive(db))
		slog.Info("database connected, archiving saved records")
	} else {
		slog.Warn("DATABASE_URL not set, running without archive")
	}

	// NATS (optional)
	var busClient *bus.Client
	if cfg.NatsURL != "" {
		busClient, err = bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer busClient.Close()
		opts = append(opts, session.WithPublisher(busClient))
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, lifecycle events disabled")
	}

	mgr := session.NewManager(session.ManagerConfig{
		CatalogPath:  cfg.EmotionsPath,
		ProgressPath: cfg.ProgressPath,
		Policy: session.Policy{
			Progress:          progressSource,
			Write:             writePolicy,
			AdvanceOnNavigate: cfg.AdvanceOnNavigate,
		},
	}, slog.Default(), opts...)

	// A dataset given at boot is opened before serving so that a bad path
	// stops the process instead of surfacing on the first request.
	if cfg.InputPath != "" {
		sess, err := mgr.Open(cfg.InputPath, cfg.OutputPath)
		if err != nil {
			slog.Error("failed to open session", "input", cfg.InputPath, "error", err)
			os.Exit(1)
		}
		sum := sess.Summary()
		slog.Info("session ready", "session_id", sum.ID, "progress", sum.Progress, "total", sum.Total)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, mgr, m.Handler())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("annotator ready", "port", cfg.Port, "progress_source", progressSource, "write_policy", writePolicy)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	if busClient != nil {
		if err := busClient.Flush(shutdownCtx); err != nil {
			slog.Warn("NATS flush incomplete", "error", err)
		}
	}
	cancel()
	slog.Info("annotator stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
