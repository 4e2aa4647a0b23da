// Package main is the overtime command-line tool: it runs the same pipeline
// as the API over local trip exports.
package main

import (
	"log/slog"
	"os"

	"github.com/pkordes/trip-overtime/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if os.Getenv("OVERTIME_DEBUG") == "YES" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if err := newApp(cfg, os.Stdout, logger).Run(os.Args); err != nil {
		logger.Error("overtime failed", "error", err)
		os.Exit(1)
	}
}
