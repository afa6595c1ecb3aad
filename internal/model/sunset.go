package model

import "time"

// captureLead is how long before sunset the capture window opens.
const captureLead = 30 * time.Minute

// resetWindow is how far past the reset hour the daily reset still fires.
// It must be wider than the host's polling cadence (5 minutes by default) so
// a delayed cycle does not miss the reset.
const resetWindow = 5 // minutes

// SunsetCondition is the once-daily evening baseline the dew model compares
// against. Zero value means "nothing captured yet today".
type SunsetCondition struct {
	TemperatureC float64
	HumidityPct  float64
	Captured     bool
}

// SunsetTracker captures temperature and humidity once per day shortly before
// sunset and clears them once per day at the reset hour. Dew formation depends
// on how far the night has cooled relative to the evening's moisture content,
// so the model needs this stable evening baseline rather than the
// instantaneous reading.
//
// The tracker is the sole writer of its condition. Observe is called once per
// cycle by the poller; calls are already serialized by the host contract.
type SunsetTracker struct {
	resetHour int
	cond      SunsetCondition
}

// NewSunsetTracker creates a tracker that resets at the given local hour.
func NewSunsetTracker(resetHour int) *SunsetTracker {
	return &SunsetTracker{resetHour: resetHour}
}

// Observe advances the tracker state machine for one cycle:
//
//   - Unset -> Captured when now >= nextSunset - 30min and nothing has been
//     captured since the last reset.
//   - Captured -> Unset when the local hour equals the reset hour and the
//     minute is inside the reset window.
//   - No-op otherwise, including repeated calls while already captured.
func (t *SunsetTracker) Observe(now, nextSunset time.Time, tempC, humidityPct float64) {
	trigger := nextSunset.Add(-captureLead)

	if !now.Before(trigger) && !t.cond.Captured {
		t.cond = SunsetCondition{
			TemperatureC: tempC,
			HumidityPct:  humidityPct,
			Captured:     true,
		}
	}

	if now.Hour() == t.resetHour && now.Minute() < resetWindow {
		t.cond = SunsetCondition{}
	}
}

// Condition returns the current captured state.
func (t *SunsetTracker) Condition() SunsetCondition {
	return t.cond
}
