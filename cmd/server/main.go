package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/plantplan/internal/config"
	"github.com/Simplici0/plantplan/internal/db"
	"github.com/Simplici0/plantplan/internal/logging"
	"github.com/Simplici0/plantplan/internal/metrics"
	"github.com/Simplici0/plantplan/internal/migrations"
	"github.com/Simplici0/plantplan/internal/optimizer"
	"github.com/Simplici0/plantplan/internal/seed"
	"github.com/Simplici0/plantplan/internal/solver"
	"github.com/Simplici0/plantplan/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("falling back to default logger", zap.Error(err))
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	simplex := solver.NewSimplex()
	if cfg.SolverMaxNodes > 0 {
		simplex.MaxNodes = cfg.SolverMaxNodes
	}
	opt := optimizer.New(
		optimizer.WithSolver(simplex),
		optimizer.WithTimeout(cfg.SolverTimeout),
		optimizer.WithLogger(logger.Named("optimizer")),
	)
	runs := store.NewRuns(database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsDev() {
		stats, err := seed.Run(ctx, runs, opt)
		if err != nil {
			logger.Fatal("failed to seed demo run", zap.Error(err))
		}
		logger.Info("seed finished", zap.Int("inserts", stats.Inserts), zap.Int("skipped", stats.Skipped))
	}

	srv := newServer(runs, opt, metrics.New(), logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
