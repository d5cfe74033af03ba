package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/fixture-feed/internal/app"
	"github.com/riskibarqy/fixture-feed/internal/config"
	"github.com/riskibarqy/fixture-feed/internal/observability"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.NewJSON(logging.LevelError).Error("load config", "error", err)
		return 1
	}

	logger, shutdownLogs, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		logging.NewJSON(logging.LevelError).Error("init log shipping", "error", err)
		return 1
	}
	logging.SetDefault(logger)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownLogs(flushCtx)
	}()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("shutdown tracing", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	runner, err := app.NewRunner(ctx, cfg, logger)
	if err != nil {
		logger.Error("build sync runner", "error", err)
		return 1
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warn("close sync runner", "error", err)
		}
	}()

	start := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		logger.Error("sync run failed", "error", err, "duration", time.Since(start), "sources", result.Sources)
		return 1
	}

	logger.Info("sync run finished",
		"matches", result.Matches,
		"fragments", result.Fragments,
		"degraded", result.Degraded,
		"generated_at", result.GeneratedAt,
		"duration", time.Since(start),
		"sources", result.Sources,
	)
	return 0
}
