package model

import (
	"math"

	"grasswatch/internal/types"
)

// Magnus-Tetens coefficients.
const (
	magnusA = 17.27
	magnusB = 237.7 // degC
)

// DewPoint computes the dew point in Celsius from ambient temperature and
// relative humidity using the Magnus-Tetens approximation:
//
//	gamma = A*T/(B+T) + ln(RH)
//	Td    = B*gamma / (A - gamma)
//
// Humidity must be in (0, 100]; ln is undefined at zero, so out-of-domain
// inputs return an arithmetic error rather than propagating NaN or -Inf.
// Double precision keeps the result stable across the sensor range
// (-20..45 degC, 1..100% RH).
func DewPoint(tempC, relativeHumidityPct float64) (float64, error) {
	if relativeHumidityPct <= 0 || relativeHumidityPct > 100 {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeArithmeticDewPoint,
			"relative humidity must be in (0, 100] for dew point", nil,
			map[string]any{"relative_humidity_pct": relativeHumidityPct})
	}
	rh := relativeHumidityPct / 100.0
	gamma := (magnusA*tempC)/(magnusB+tempC) + math.Log(rh)
	return (magnusB * gamma) / (magnusA - gamma), nil
}
