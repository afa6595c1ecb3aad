package model

import (
	"math"

	"grasswatch/internal/types"
)

// dewInactiveDepression is the sentinel depression used before any sunset
// capture has happened today. It deliberately exceeds any physical value so
// the night-wetting branch stays reachable only through a real capture.
const dewInactiveDepression = 100.0

// Moisture owns the persisted wetness level and applies one state transition
// per cycle. It is the sole durable output of the core: the level survives
// between polls for as long as the instance lives.
type Moisture struct {
	params Params
	level  float64
}

// NewMoisture validates the tunables and creates a model seeded with
// Params.InitialMoisture. Invalid tunables are fatal here, not per-cycle.
func NewMoisture(p Params) (*Moisture, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Moisture{params: p, level: p.InitialMoisture}, nil
}

// Level returns the current persisted moisture level.
func (m *Moisture) Level() float64 {
	return m.level
}

// Step consumes one validated sensor snapshot plus the day's captured sunset
// condition and produces the next moisture level and the diagnostic dew point.
//
// Exactly one of four mutually exclusive, priority-ordered transitions is
// applied:
//
//  1. Rain: moisture saturates to 1.0 unconditionally.
//  2. Night dew-wetting: below the dew cap with a positive dew-point
//     depression, moisture rises (never falls) toward depression *
//     WettingIncrement, ceilinged at DewMoistCap.
//  3. Daytime drying: with humidity under the threshold, moisture drops by
//     the drying rate, floored at 0.
//  4. Hold: otherwise the level is unchanged.
//
// Any validation or arithmetic failure leaves the persisted level exactly as
// it was; errors are local to the cycle.
func (m *Moisture) Step(snap types.SensorSnapshot, cond SunsetCondition) (types.ModelResult, error) {
	if err := snap.Validate(); err != nil {
		return types.ModelResult{}, err
	}

	dewPoint, err := DewPoint(snap.TemperatureC, snap.RelativeHumidityPct)
	if err != nil {
		return types.ModelResult{}, err
	}

	// Dew-point depression relative to the evening baseline. The sentinel
	// marks dew formation inactive: without a capture the wetting branch
	// must not trigger, so the branch below also checks cond.Captured.
	depression := dewInactiveDepression
	if cond.Captured {
		sunsetDew, err := DewPoint(cond.TemperatureC, cond.HumidityPct)
		if err != nil {
			return types.ModelResult{}, err
		}
		depression = sunsetDew + m.params.DewTempDifference - snap.TemperatureC
	}

	dryRate := DryingRate(snap.SolarPowerW, snap.RelativeHumidityPct, snap.TemperatureC, snap.WindSpeedKmh, m.params)

	level := m.level
	switch {
	case snap.IsRaining:
		level = 1.0

	case !snap.IsDaytime && cond.Captured && level < m.params.DewMoistCap && depression > 0:
		increase := depression * m.params.WettingIncrement
		level = math.Min(math.Max(level, increase), m.params.DewMoistCap)

	case snap.IsDaytime && snap.RelativeHumidityPct < m.params.HumidityThresholdPct:
		level = math.Max(0.0, level-dryRate)
	}

	level = clamp01(round3(level))
	m.level = level

	return types.ModelResult{
		Moisture:   level,
		DewPointC:  dewPoint,
		ObservedAt: snap.Timestamp,
	}, nil
}

// round3 rounds to three decimal digits, the persistence precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
