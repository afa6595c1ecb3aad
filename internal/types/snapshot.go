package types

import (
	"math"
	"time"
)

// Validation bounds for snapshot fields. The humidity lower bound is strict:
// the Magnus-Tetens dew point takes ln(rh) and is undefined at zero.
const (
	MinHumidityPct = 0.0
	MaxHumidityPct = 100.0
	MinTempC       = -60.0
	MaxTempC       = 60.0
)

// SensorSnapshot is the normalized per-cycle input to the moisture model.
// The host adapter assembles it from the sensor hub; all parsing and state
// cleanup happens there, never inside the model. A snapshot is ephemeral and
// constructed fresh each cycle.
type SensorSnapshot struct {
	TemperatureC        float64   `json:"temperature_c"`
	RelativeHumidityPct float64   `json:"relative_humidity_pct"`
	SolarPowerW         float64   `json:"solar_power_w"`
	WindSpeedKmh        float64   `json:"wind_speed_kmh"`
	IsRaining           bool      `json:"is_raining"`
	IsDaytime           bool      `json:"is_daytime"`
	Timestamp           time.Time `json:"timestamp"`
	NextSunset          time.Time `json:"next_sunset"`
}

// Validate enforces the snapshot domain: every numeric field finite, humidity
// in (0, 100], solar and wind non-negative, timestamps set. The model rejects
// invalid snapshots before touching any state.
func (s SensorSnapshot) Validate() error {
	for name, v := range map[string]float64{
		"temperature_c":         s.TemperatureC,
		"relative_humidity_pct": s.RelativeHumidityPct,
		"solar_power_w":         s.SolarPowerW,
		"wind_speed_kmh":        s.WindSpeedKmh,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewAppErrorWithDetails(ErrCodeValidationNonFinite,
				"snapshot field is not a finite number", nil,
				map[string]any{"field": name})
		}
	}
	if s.RelativeHumidityPct <= MinHumidityPct || s.RelativeHumidityPct > MaxHumidityPct {
		return NewAppErrorWithDetails(ErrCodeValidationHumidityRange,
			"relative humidity must be in (0, 100]", nil,
			map[string]any{"relative_humidity_pct": s.RelativeHumidityPct})
	}
	if s.SolarPowerW < 0 {
		return NewAppErrorWithDetails(ErrCodeValidationNegativeSolar,
			"solar power must be >= 0", nil,
			map[string]any{"solar_power_w": s.SolarPowerW})
	}
	if s.WindSpeedKmh < 0 {
		return NewAppErrorWithDetails(ErrCodeValidationNegativeWind,
			"wind speed must be >= 0", nil,
			map[string]any{"wind_speed_kmh": s.WindSpeedKmh})
	}
	if s.Timestamp.IsZero() || s.NextSunset.IsZero() {
		return NewAppError(ErrCodeValidationZeroTimestamp,
			"snapshot timestamp and next_sunset must be set", nil)
	}
	return nil
}

// ModelResult is the per-cycle output contract of the moisture model.
type ModelResult struct {
	Moisture   float64   `json:"moisture"`
	DewPointC  float64   `json:"dew_point_c"`
	ObservedAt time.Time `json:"observed_at"`
}

// CycleStatus summarizes the poller's run history for health checks and the
// read API.
type CycleStatus struct {
	Cycles      uint64    `json:"cycles"`
	Failures    uint64    `json:"failures"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}
