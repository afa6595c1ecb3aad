package model

// humidityDryCutoffPct is the humidity at and above which evaporative drying
// stops entirely.
const humidityDryCutoffPct = 90.0

// DryingRate computes the instantaneous drying rate: the moisture fraction
// removed per cycle under ideal continuous drying. The result is always >= 0.
//
// Four limiting-factor components are each clamped to [0, 1]. Sun and low
// humidity are necessary conditions and are multiplied (either alone near
// zero kills drying); temperature and wind are accelerants that scale the
// base multiplicatively without being independently sufficient (their boost
// is always >= 1).
func DryingRate(solarW, humidityPct, tempC, windKmh float64, p Params) float64 {
	sun := clamp01(solarW / p.MaxSolarW)
	humidity := clamp01((humidityDryCutoffPct - humidityPct) / 100.0)
	temp := clamp01((tempC - p.MinDryTempC) / (p.MaxDryTempC - p.MinDryTempC))
	wind := clamp01(windKmh / p.MaxEffectiveWindKmh)

	base := sun * humidity
	boost := 1.0 + temp*p.WeightTemp + wind*p.WeightWind

	return base * boost * p.MasterDryingCoefficient
}
