// Package main is the entry point for the overtime API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/trip-overtime/internal/config"
	"github.com/pkordes/trip-overtime/internal/handler"
	"github.com/pkordes/trip-overtime/internal/ingest"
	"github.com/pkordes/trip-overtime/internal/middleware"
	"github.com/pkordes/trip-overtime/internal/overtime"
	"github.com/pkordes/trip-overtime/internal/postcode"
	"github.com/pkordes/trip-overtime/internal/repo"
	"github.com/pkordes/trip-overtime/internal/service"
	"github.com/pkordes/trip-overtime/migrations"
	"github.com/pkordes/trip-overtime/openapi"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Report archive ---------------------------------------------------
	// Optional: without DATABASE_URL reports are computed but not stored.
	var archive repo.ReportRepo
	if cfg.DatabaseURL != "" {
		pool, err := openArchive(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to open report archive", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		archive = repo.NewReportRepo(pool)
		slog.Info("report archive enabled")
	} else {
		slog.Info("report archive disabled; DATABASE_URL not set")
	}

	// --- Pipeline ---------------------------------------------------------
	svc := service.NewOvertimeService(
		ingest.NewReader(cfg.Layout()),
		ingest.NewBuilder(postcode.New(cfg.HomeCode, postcode.DefaultAliases...)),
		overtime.NewEngine(cfg.Policy()),
		service.NewCaches(),
		archive,
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))
	r.Mount("/", handler.NewServer(svc, openapi.Document, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Workbook parsing can take a while for large uploads, hence the longer
	// read and write timeouts.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openArchive connects to Postgres, applies pending migrations and returns
// the pool used by the report repo.
func openArchive(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	n, err := migrations.Up(ctx, db)
	_ = db.Close()
	if err != nil {
		return nil, err
	}
	slog.Info("migrations applied", "count", n)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
