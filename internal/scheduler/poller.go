// Package scheduler implements the periodic poll cycle that drives the
// moisture model. Each cycle fetches a fresh snapshot from the sensor hub,
// feeds the sunset tracker, steps the model, and retains the latest result
// for the read API.
//
// The host serializes cycles: RunCycle is invoked at most once per interval
// and never concurrently against the same poller. The internal mutex exists
// only so the API can read the latest result while a cycle is in flight.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"grasswatch/internal/model"
	"grasswatch/internal/types"
)

// SnapshotSource abstracts the sensor hub for the poller. Using an interface
// keeps the cycle testable without a live hub.
type SnapshotSource interface {
	// Fetch assembles a validated snapshot of the current conditions.
	Fetch(ctx context.Context) (types.SensorSnapshot, error)
}

// CycleMetrics receives per-cycle telemetry. A nil implementation disables
// recording.
type CycleMetrics interface {
	RecordCycle(d time.Duration)
	RecordCycleError(code string)
	RecordResult(moisture, dewPointC float64)
}

// Poller owns the moisture model and its sunset tracker and runs one
// estimation cycle at a time.
type Poller struct {
	source   SnapshotSource
	moisture *model.Moisture
	tracker  *model.SunsetTracker
	metrics  CycleMetrics
	clock    types.Clock
	logger   *slog.Logger

	mu        sync.Mutex
	last      types.ModelResult
	hasResult bool
	status    types.CycleStatus
}

// PollerConfig holds the dependencies for creating a Poller.
type PollerConfig struct {
	Source   SnapshotSource
	Moisture *model.Moisture
	Tracker  *model.SunsetTracker
	Metrics  CycleMetrics
	Clock    types.Clock
	Logger   *slog.Logger
}

// NewPoller creates a Poller with the given configuration.
func NewPoller(cfg PollerConfig) *Poller {
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   cfg.Source,
		moisture: cfg.Moisture,
		tracker:  cfg.Tracker,
		metrics:  cfg.Metrics,
		clock:    clock,
		logger:   logger,
	}
}

// RunCycle executes one estimation cycle. A failure anywhere in the cycle is
// local to that cycle: it is logged, counted, and surfaced, and every piece of
// persisted state (moisture level, sunset capture) keeps its previous value
// for the next attempt.
func (p *Poller) RunCycle(ctx context.Context) error {
	start := p.clock.Now()

	snap, err := p.source.Fetch(ctx)
	if err != nil {
		return p.failCycle(ctx, start, fmt.Errorf("fetching snapshot: %w", err))
	}

	// The tracker sees every valid snapshot, day and night; it decides
	// internally whether this cycle captures or resets.
	p.tracker.Observe(snap.Timestamp, snap.NextSunset, snap.TemperatureC, snap.RelativeHumidityPct)

	result, err := p.moisture.Step(snap, p.tracker.Condition())
	if err != nil {
		return p.failCycle(ctx, start, fmt.Errorf("stepping moisture model: %w", err))
	}

	duration := p.clock.Now().Sub(start)

	p.mu.Lock()
	p.last = result
	p.hasResult = true
	p.status.Cycles++
	p.status.LastSuccess = result.ObservedAt
	p.status.LastError = ""
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordCycle(duration)
		p.metrics.RecordResult(result.Moisture, result.DewPointC)
	}

	p.logger.InfoContext(ctx, "cycle complete",
		"moisture", result.Moisture,
		"dew_point_c", result.DewPointC,
		"is_raining", snap.IsRaining,
		"is_daytime", snap.IsDaytime,
		"sunset_captured", p.tracker.Condition().Captured,
		"duration", duration,
	)
	return nil
}

// failCycle records a failed cycle and returns the error.
func (p *Poller) failCycle(ctx context.Context, start time.Time, err error) error {
	duration := p.clock.Now().Sub(start)

	p.mu.Lock()
	p.status.Cycles++
	p.status.Failures++
	p.status.LastError = err.Error()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.RecordCycle(duration)
		p.metrics.RecordCycleError(errorCode(err))
	}

	p.logger.ErrorContext(ctx, "cycle failed",
		"error", err,
		"duration", duration,
	)
	return err
}

// Last returns the most recent successful result, if any cycle has completed.
func (p *Poller) Last() (types.ModelResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasResult
}

// Status returns a copy of the cycle counters.
func (p *Poller) Status() types.CycleStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// errorCode extracts the AppError code for metric labels, with a stable
// fallback for unexpected error types.
func errorCode(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return string(types.ErrCodeInternalUnexpected)
}
