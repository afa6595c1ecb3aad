// Package model implements the grass-wetness estimation core: the
// Magnus-Tetens dew point, the evaporative drying rate, the once-daily
// sunset-condition capture, and the moisture state machine that combines
// rain, dew, and drying effects into a persisted wetness level.
//
// Everything in this package is a pure, synchronous, in-memory computation.
// The host (internal/scheduler) owns the cycle cadence and serializes calls;
// the model performs no I/O and no locking.
package model

import (
	"grasswatch/internal/types"
)

// Params holds the tunable constants of the physical model. They encode an
// empirically calibrated approximation of lawn evaporation and dew formation
// and are injected at construction rather than hardcoded, so recalibration
// never requires a code change.
type Params struct {
	// Drying-rate factors.
	MaxSolarW           float64 // solar power at which the sun factor saturates
	MinDryTempC         float64 // below this temperature the temp factor is zero
	MaxDryTempC         float64 // at or above this the temp factor saturates
	MaxEffectiveWindKmh float64 // wind speed at which the wind factor saturates
	WeightTemp          float64 // accelerant weight of the temp factor
	WeightWind          float64 // accelerant weight of the wind factor

	// MasterDryingCoefficient scales the combined drying potential into a
	// per-cycle moisture fraction.
	MasterDryingCoefficient float64

	// State-machine thresholds.
	HumidityThresholdPct float64 // no daytime drying at or above this humidity
	DewTempDifference    float64 // margin added to the sunset dew point, degC
	DewMoistCap          float64 // ceiling dew wetting can raise moisture to
	DewResetHour         int     // local hour at which the sunset capture resets
	WettingIncrement     float64 // moisture gained per degC of dew depression

	// InitialMoisture seeds the persisted level at construction. The reference
	// behavior starts bone dry (0.0); operators restarting mid-wet-day can
	// seed a higher value.
	InitialMoisture float64
}

// DefaultParams returns the reference calibration.
func DefaultParams() Params {
	return Params{
		MaxSolarW:               6000,
		MinDryTempC:             8,
		MaxDryTempC:             30,
		MaxEffectiveWindKmh:     30,
		WeightTemp:              0.15,
		WeightWind:              0.10,
		MasterDryingCoefficient: 0.02,
		HumidityThresholdPct:    85,
		DewTempDifference:       2.0,
		DewMoistCap:             0.6,
		DewResetHour:            12,
		WettingIncrement:        0.05,
		InitialMoisture:         0.0,
	}
}

// Validate checks the internal consistency of the tunables. A violation is a
// construction-time configuration error, never a per-cycle one.
func (p Params) Validate() error {
	if p.MinDryTempC >= p.MaxDryTempC {
		return types.NewAppErrorWithDetails(types.ErrCodeConfigTempOrdering,
			"MinDryTempC must be strictly below MaxDryTempC", nil,
			map[string]any{"min_dry_temp_c": p.MinDryTempC, "max_dry_temp_c": p.MaxDryTempC})
	}
	if p.MaxSolarW <= 0 {
		return configRange("MaxSolarW must be > 0", "max_solar_w", p.MaxSolarW)
	}
	if p.MaxEffectiveWindKmh <= 0 {
		return configRange("MaxEffectiveWindKmh must be > 0", "max_effective_wind_kmh", p.MaxEffectiveWindKmh)
	}
	if p.WeightTemp < 0 || p.WeightWind < 0 {
		return configRange("accelerant weights must be >= 0", "weight_temp", p.WeightTemp)
	}
	if p.MasterDryingCoefficient < 0 {
		return configRange("MasterDryingCoefficient must be >= 0", "master_drying_coefficient", p.MasterDryingCoefficient)
	}
	if p.HumidityThresholdPct <= 0 || p.HumidityThresholdPct > 100 {
		return configRange("HumidityThresholdPct must be in (0, 100]", "humidity_threshold_pct", p.HumidityThresholdPct)
	}
	if p.DewMoistCap < 0 || p.DewMoistCap > 1 {
		return configRange("DewMoistCap must be in [0, 1]", "dew_moist_cap", p.DewMoistCap)
	}
	if p.DewResetHour < 0 || p.DewResetHour > 23 {
		return configRange("DewResetHour must be a valid hour", "dew_reset_hour", float64(p.DewResetHour))
	}
	if p.WettingIncrement < 0 {
		return configRange("WettingIncrement must be >= 0", "wetting_increment", p.WettingIncrement)
	}
	if p.InitialMoisture < 0 || p.InitialMoisture > 1 {
		return configRange("InitialMoisture must be in [0, 1]", "initial_moisture", p.InitialMoisture)
	}
	return nil
}

func configRange(msg, field string, value float64) error {
	return types.NewAppErrorWithDetails(types.ErrCodeConfigRange, msg, nil,
		map[string]any{field: value})
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
