// Package main is the entrypoint for the GrassWatch tracker daemon.
//
// The tracker polls a sensor hub on a fixed interval, feeds each snapshot
// through the moisture model, and serves the latest estimate over a small
// read-only HTTP API alongside health and prometheus endpoints.
//
// This file handles dependency wiring only; the poll cycle lives in
// internal/scheduler and the HTTP surface in internal/api.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"grasswatch/internal/api"
	"grasswatch/internal/config"
	"grasswatch/internal/model"
	"grasswatch/internal/observability"
	"grasswatch/internal/scheduler"
	"grasswatch/internal/sensors"
	"grasswatch/internal/types"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tracker exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("tracker starting",
		"environment", cfg.Environment,
		"poll_interval", cfg.Poll.Interval,
		"hub", cfg.Hub.BaseURL,
	)

	params := cfg.Model.Params()
	moisture, err := model.NewMoisture(params)
	if err != nil {
		return fmt.Errorf("building moisture model: %w", err)
	}

	hub := sensors.New(sensors.Config{
		BaseURL: cfg.Hub.BaseURL,
		Token:   cfg.Hub.Token,
		Timeout: cfg.Hub.Timeout,
		Entities: sensors.Entities{
			Temperature: cfg.Hub.TemperatureEntity,
			Humidity:    cfg.Hub.HumidityEntity,
			Solar:       cfg.Hub.SolarEntity,
			Rain:        cfg.Hub.RainEntity,
			Weather:     cfg.Hub.WeatherEntity,
			Sun:         cfg.Hub.SunEntity,
		},
	}, types.RealClock{}, logger)

	metrics := observability.NewMetrics()

	poller := scheduler.NewPoller(scheduler.PollerConfig{
		Source:   hub,
		Moisture: moisture,
		Tracker:  model.NewSunsetTracker(params.DewResetHour),
		Metrics:  metrics,
		Logger:   logger,
	})

	server := api.NewServer(api.ServerConfig{
		Config:  cfg.Server,
		Poll:    cfg.Poll,
		Source:  poller,
		Hub:     hub,
		Metrics: metrics.Handler(),
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// First cycle runs immediately so the API has state before the first
	// scheduled tick. A failure here is not fatal; the schedule retries.
	if err := poller.RunCycle(ctx); err != nil {
		logger.Warn("initial cycle failed", "error", err)
	}

	// SkipIfStillRunning guarantees cycles never overlap even if one hangs
	// past the interval.
	sched := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	_, err = sched.AddFunc(fmt.Sprintf("@every %s", cfg.Poll.Interval), func() {
		cycleCtx, cancel := context.WithTimeout(ctx, cfg.Poll.Interval)
		defer cancel()
		// Errors are already counted and logged inside the cycle.
		_ = poller.RunCycle(cycleCtx)
	})
	if err != nil {
		return fmt.Errorf("scheduling poll cycle: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sched.Start()
		<-gctx.Done()

		stopCtx := sched.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(cfg.Server.ShutdownTimeout):
			logger.Warn("timed out waiting for in-flight cycle")
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("read api listening", "port", cfg.Server.Port)
		return server.ListenAndServe(gctx)
	})

	err = g.Wait()
	logger.Info("tracker stopped")
	return err
}

func newLogger(level string) *slog.Logger {
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
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
