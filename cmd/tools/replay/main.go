// Package main implements the replay CLI tool for offline evaluation of the
// moisture model. It feeds a sequence of recorded snapshots (CSV) or a
// generated synthetic day through the model and prints the resulting moisture
// trace, which makes tuning the drying and dew constants a matter of seconds
// instead of waiting on live weather.
//
// Usage:
//
//	go run ./cmd/tools/replay --input=day.csv
//	go run ./cmd/tools/replay --synthetic --days=3 --interval=5m
//	go run ./cmd/tools/replay --synthetic --rain=14:00-15:30
//	go run ./cmd/tools/replay --input=day.csv --initial=0.8
//
// Input CSV columns (header required):
//
//	timestamp,temperature_c,humidity_pct,solar_w,wind_kmh,raining,daytime,next_sunset
//
// Timestamps are RFC3339. Output is CSV on stdout:
//
//	timestamp,moisture,dew_point_c
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"grasswatch/internal/model"
	"grasswatch/internal/types"
)

func main() {
	inputFlag := flag.String("input", "", "Path to a snapshot CSV (use --synthetic instead to generate one)")
	syntheticFlag := flag.Bool("synthetic", false, "Generate synthetic days instead of reading a file")
	daysFlag := flag.Int("days", 1, "Number of synthetic days to generate")
	rainFlag := flag.String("rain", "", "Daily rain window for --synthetic, e.g. 14:00-15:30")
	intervalFlag := flag.Duration("interval", 5*time.Minute, "Snapshot cadence for --synthetic")
	initialFlag := flag.Float64("initial", 0, "Initial moisture level in [0, 1]")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: replay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Run recorded or synthetic sensor snapshots through the moisture model.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inputFlag == "" && !*syntheticFlag {
		fmt.Fprintf(os.Stderr, "error: either --input or --synthetic is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var (
		snaps []types.SensorSnapshot
		err   error
	)
	if *syntheticFlag {
		rain, parseErr := parseRainWindow(*rainFlag)
		if parseErr != nil {
			fmt.Fprintf(os.Stderr, "error: invalid --rain %q: %v\n", *rainFlag, parseErr)
			os.Exit(1)
		}
		start := time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local)
		snaps = syntheticDays(start, *intervalFlag, *daysFlag, rain)
	} else {
		f, openErr := os.Open(*inputFlag)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "error: opening %s: %v\n", *inputFlag, openErr)
			os.Exit(1)
		}
		snaps, err = parseSnapshots(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: parsing %s: %v\n", *inputFlag, err)
			os.Exit(1)
		}
	}

	params := model.DefaultParams()
	params.InitialMoisture = *initialFlag

	results, err := replay(params, snaps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := writeResults(os.Stdout, results); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing output: %v\n", err)
		os.Exit(1)
	}
}

// replay runs every snapshot through a fresh model instance in order.
func replay(params model.Params, snaps []types.SensorSnapshot) ([]types.ModelResult, error) {
	moisture, err := model.NewMoisture(params)
	if err != nil {
		return nil, err
	}
	tracker := model.NewSunsetTracker(params.DewResetHour)

	results := make([]types.ModelResult, 0, len(snaps))
	for i, snap := range snaps {
		tracker.Observe(snap.Timestamp, snap.NextSunset, snap.TemperatureC, snap.RelativeHumidityPct)
		result, err := moisture.Step(snap, tracker.Condition())
		if err != nil {
			return nil, fmt.Errorf("snapshot %d (%s): %w", i, snap.Timestamp.Format(time.RFC3339), err)
		}
		results = append(results, result)
	}
	return results, nil
}

// parseSnapshots reads the input CSV. The header row is required and column
// order is fixed.
func parseSnapshots(r io.Reader) ([]types.SensorSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 8

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != "timestamp" {
		return nil, fmt.Errorf("unexpected header %q, want first column %q", header[0], "timestamp")
	}

	var snaps []types.SensorSnapshot
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		snap, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func parseRecord(record []string) (types.SensorSnapshot, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return types.SensorSnapshot{}, fmt.Errorf("timestamp: %w", err)
	}

	fields := make([]float64, 4)
	names := []string{"temperature_c", "humidity_pct", "solar_w", "wind_kmh"}
	for i, name := range names {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return types.SensorSnapshot{}, fmt.Errorf("%s: %w", name, err)
		}
		fields[i] = v
	}

	raining, err := strconv.ParseBool(record[5])
	if err != nil {
		return types.SensorSnapshot{}, fmt.Errorf("raining: %w", err)
	}
	daytime, err := strconv.ParseBool(record[6])
	if err != nil {
		return types.SensorSnapshot{}, fmt.Errorf("daytime: %w", err)
	}
	nextSunset, err := time.Parse(time.RFC3339, record[7])
	if err != nil {
		return types.SensorSnapshot{}, fmt.Errorf("next_sunset: %w", err)
	}

	return types.SensorSnapshot{
		TemperatureC:        fields[0],
		RelativeHumidityPct: fields[1],
		SolarPowerW:         fields[2],
		WindSpeedKmh:        fields[3],
		IsRaining:           raining,
		IsDaytime:           daytime,
		Timestamp:           ts,
		NextSunset:          nextSunset,
	}, nil
}

func writeResults(w io.Writer, results []types.ModelResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "moisture", "dew_point_c"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.ObservedAt.Format(time.RFC3339),
			strconv.FormatFloat(r.Moisture, 'f', 3, 64),
			strconv.FormatFloat(r.DewPointC, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Synthetic day shape: sunrise 06:00, sunset 20:00, solar peaking at 13:00,
// temperature peaking mid-afternoon, humidity moving opposite to temperature.
const (
	synSunriseHour = 6
	synSunsetHour  = 20
)

// rainWindow is a daily interval, as minutes since midnight, during which the
// synthetic rain sensor reports wet.
type rainWindow struct {
	fromMin, toMin int
}

func (w rainWindow) contains(ts time.Time) bool {
	m := ts.Hour()*60 + ts.Minute()
	return m >= w.fromMin && m < w.toMin
}

// parseRainWindow parses "HH:MM-HH:MM". An empty string means no rain.
func parseRainWindow(s string) (*rainWindow, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("want HH:MM-HH:MM")
	}
	from, err := parseClock(parts[0])
	if err != nil {
		return nil, err
	}
	to, err := parseClock(parts[1])
	if err != nil {
		return nil, err
	}
	if to <= from {
		return nil, fmt.Errorf("window end must be after start")
	}
	return &rainWindow{fromMin: from, toMin: to}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// syntheticDays generates consecutive plausible summer days of snapshots at
// the given cadence, starting at midnight. The optional rain window repeats
// every day.
func syntheticDays(start time.Time, interval time.Duration, days int, rain *rainWindow) []types.SensorSnapshot {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if days < 1 {
		days = 1
	}

	var snaps []types.SensorSnapshot
	for ts := start; ts.Before(start.AddDate(0, 0, days)); ts = ts.Add(interval) {
		hour := float64(ts.Hour()) + float64(ts.Minute())/60

		daytime := hour >= synSunriseHour && hour < synSunsetHour
		raining := rain != nil && rain.contains(ts)

		// Solar follows a half-sine between sunrise and sunset, flattened
		// under rain.
		var solar float64
		if daytime {
			phase := (hour - synSunriseHour) / (synSunsetHour - synSunriseHour)
			solar = 5000 * math.Sin(phase*math.Pi)
			if raining {
				solar *= 0.15
			}
		}

		// Temperature swings 12..26 C, peaking around 15:00.
		temp := 19 + 7*math.Sin((hour-9)/24*2*math.Pi)
		// Humidity swings opposite, 45..95 %, pinned high under rain.
		humidity := 70 - 25*math.Sin((hour-9)/24*2*math.Pi)
		if raining {
			humidity = math.Max(humidity, 93)
		}

		sunset := time.Date(ts.Year(), ts.Month(), ts.Day(), synSunsetHour, 0, 0, 0, ts.Location())
		if !ts.Before(sunset) {
			sunset = sunset.Add(24 * time.Hour)
		}

		snaps = append(snaps, types.SensorSnapshot{
			TemperatureC:        temp,
			RelativeHumidityPct: humidity,
			SolarPowerW:         solar,
			WindSpeedKmh:        8,
			IsRaining:           raining,
			IsDaytime:           daytime,
			Timestamp:           ts,
			NextSunset:          sunset,
		})
	}
	return snaps
}
