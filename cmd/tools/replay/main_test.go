package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasswatch/internal/model"
)

const sampleCSV = `timestamp,temperature_c,humidity_pct,solar_w,wind_kmh,raining,daytime,next_sunset
2026-06-15T12:00:00Z,22.0,55,4200,12,false,true,2026-06-15T20:00:00Z
2026-06-15T12:05:00Z,22.1,54,4300,11,false,true,2026-06-15T20:00:00Z
2026-06-15T12:10:00Z,21.8,60,3900,10,true,true,2026-06-15T20:00:00Z
`

func TestParseSnapshots(t *testing.T) {
	snaps, err := parseSnapshots(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.Equal(t, 22.0, snaps[0].TemperatureC)
	assert.Equal(t, 55.0, snaps[0].RelativeHumidityPct)
	assert.True(t, snaps[0].IsDaytime)
	assert.False(t, snaps[0].IsRaining)
	assert.True(t, snaps[2].IsRaining)
	assert.Equal(t, time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC), snaps[0].NextSunset)
}

func TestParseSnapshots_BadHeader(t *testing.T) {
	_, err := parseSnapshots(strings.NewReader("foo,bar\n"))
	require.Error(t, err)
}

func TestParseSnapshots_BadField(t *testing.T) {
	bad := strings.Replace(sampleCSV, "22.0", "warm", 1)
	_, err := parseSnapshots(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature_c")
}

func TestReplay_RainSaturates(t *testing.T) {
	snaps, err := parseSnapshots(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	results, err := replay(model.DefaultParams(), snaps)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Dry start, two drying ticks, then rain saturates.
	assert.Equal(t, 0.0, results[0].Moisture)
	assert.Equal(t, 0.0, results[1].Moisture)
	assert.Equal(t, 1.0, results[2].Moisture)
}

func TestSyntheticDays_Shape(t *testing.T) {
	start := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	snaps := syntheticDays(start, 30*time.Minute, 2, nil)
	require.Len(t, snaps, 96)

	for _, snap := range snaps {
		require.NoError(t, snap.Validate(), "synthetic snapshot at %s", snap.Timestamp)

		hour := snap.Timestamp.Hour()
		wantDay := hour >= synSunriseHour && hour < synSunsetHour
		assert.Equal(t, wantDay, snap.IsDaytime, "daytime flag at %s", snap.Timestamp)

		if !snap.IsDaytime {
			assert.Zero(t, snap.SolarPowerW, "solar at night at %s", snap.Timestamp)
		}
		assert.False(t, snap.IsRaining)
		assert.True(t, snap.NextSunset.After(snap.Timestamp))
	}
}

func TestSyntheticDays_RainWindow(t *testing.T) {
	rain, err := parseRainWindow("14:00-15:30")
	require.NoError(t, err)

	start := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	snaps := syntheticDays(start, 30*time.Minute, 1, rain)

	rainy := 0
	for _, snap := range snaps {
		m := snap.Timestamp.Hour()*60 + snap.Timestamp.Minute()
		wantRain := m >= 14*60 && m < 15*60+30
		assert.Equal(t, wantRain, snap.IsRaining, "rain flag at %s", snap.Timestamp)
		if snap.IsRaining {
			rainy++
			assert.GreaterOrEqual(t, snap.RelativeHumidityPct, 93.0)
		}
	}
	assert.Equal(t, 3, rainy)
}

func TestParseRainWindow_Invalid(t *testing.T) {
	for _, bad := range []string{"14:00", "15:00-14:00", "2pm-3pm"} {
		_, err := parseRainWindow(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestReplay_SyntheticDayStaysInRange(t *testing.T) {
	start := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	snaps := syntheticDays(start, 5*time.Minute, 1, nil)

	params := model.DefaultParams()
	params.InitialMoisture = 0.8

	results, err := replay(params, snaps)
	require.NoError(t, err)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Moisture, 0.0)
		assert.LessOrEqual(t, r.Moisture, 1.0)
	}

	// A warm dry day must dry the lawn down from its wet start.
	assert.Less(t, results[len(results)-1].Moisture, 0.8)
}

func TestWriteResults(t *testing.T) {
	snaps, err := parseSnapshots(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	results, err := replay(model.DefaultParams(), snaps)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "timestamp,moisture,dew_point_c", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2026-06-15T12:00:00Z,0.000,"))
	assert.True(t, strings.HasPrefix(lines[3], "2026-06-15T12:10:00Z,1.000,"))
}
