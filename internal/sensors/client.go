// Package sensors is the host-side adapter between the moisture model and the
// sensor hub. It owns every bit of state parsing and cleanup: entity states
// arrive as strings from the hub's REST API and leave this package only as a
// validated types.SensorSnapshot. The model never sees a raw sensor value.
package sensors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"grasswatch/internal/types"
)

// windSpeedAttr is the weather entity attribute carrying wind speed in km/h.
const windSpeedAttr = "wind_speed"

// nextSettingAttr is the sun entity attribute carrying the next sunset time.
const nextSettingAttr = "next_setting"

// sunAboveHorizon is the sun entity state during daytime.
const sunAboveHorizon = "above_horizon"

// Entities names the hub entities read each cycle.
type Entities struct {
	Temperature string
	Humidity    string
	Solar       string
	Rain        string
	Weather     string
	Sun         string
}

// Config holds the hub connection settings.
type Config struct {
	BaseURL   string
	Token     types.SecretString
	Timeout   time.Duration
	UserAgent string
	Entities  Entities
}

// Client reads entity states from the sensor hub over its REST API
// (GET /api/states/{entity_id}). All calls go through a circuit breaker so a
// dead hub trips fast instead of timing out every cycle.
type Client struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[entityState]
	clock   types.Clock
	logger  *slog.Logger
}

// entityState is the hub's wire representation of one entity.
type entityState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// New creates a hub client. A nil clock defaults to the system clock and a
// nil logger to slog.Default.
func New(cfg Config, clock types.Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[entityState](gobreaker.Settings{
		Name:        "sensor-hub",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
		clock:   clock,
		logger:  logger,
	}
}

// Fetch reads all configured entities and assembles a validated snapshot.
// Any unavailable entity, unparseable state, or hub failure aborts the fetch;
// the caller treats it as a failed cycle.
func (c *Client) Fetch(ctx context.Context) (types.SensorSnapshot, error) {
	temp, err := c.floatEntity(ctx, c.cfg.Entities.Temperature)
	if err != nil {
		return types.SensorSnapshot{}, err
	}
	humidity, err := c.floatEntity(ctx, c.cfg.Entities.Humidity)
	if err != nil {
		return types.SensorSnapshot{}, err
	}
	solar, err := c.floatEntity(ctx, c.cfg.Entities.Solar)
	if err != nil {
		return types.SensorSnapshot{}, err
	}

	raining, err := c.rainEntity(ctx, c.cfg.Entities.Rain)
	if err != nil {
		return types.SensorSnapshot{}, err
	}

	weather, err := c.getEntity(ctx, c.cfg.Entities.Weather)
	if err != nil {
		return types.SensorSnapshot{}, err
	}
	wind, err := attrFloat(weather, windSpeedAttr)
	if err != nil {
		return types.SensorSnapshot{}, err
	}

	sun, err := c.getEntity(ctx, c.cfg.Entities.Sun)
	if err != nil {
		return types.SensorSnapshot{}, err
	}
	nextSunset, err := attrTime(sun, nextSettingAttr)
	if err != nil {
		return types.SensorSnapshot{}, err
	}

	snap := types.SensorSnapshot{
		TemperatureC:        temp,
		RelativeHumidityPct: humidity,
		SolarPowerW:         solar,
		WindSpeedKmh:        wind,
		IsRaining:           raining,
		IsDaytime:           sun.State == sunAboveHorizon,
		Timestamp:           c.clock.Now(),
		NextSunset:          nextSunset,
	}
	if err := snap.Validate(); err != nil {
		return types.SensorSnapshot{}, err
	}
	return snap, nil
}

// Ping checks hub reachability for health probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/", nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "building hub ping request", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamHubUnavailable, "sensor hub unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppErrorWithDetails(types.ErrCodeUpstreamHubUnavailable,
			"sensor hub ping failed", nil,
			map[string]any{"status": resp.StatusCode})
	}
	return nil
}

// getEntity fetches a single entity state through the circuit breaker.
func (c *Client) getEntity(ctx context.Context, entityID string) (entityState, error) {
	state, err := c.breaker.Execute(func() (entityState, error) {
		return c.fetchEntity(ctx, entityID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return entityState{}, types.NewAppError(types.ErrCodeUpstreamHubUnavailable,
				"sensor hub circuit open", err)
		}
		return entityState{}, err
	}
	return state, nil
}

func (c *Client) fetchEntity(ctx context.Context, entityID string) (entityState, error) {
	url := fmt.Sprintf("%s/api/states/%s", c.cfg.BaseURL, entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entityState{}, types.NewAppError(types.ErrCodeInternalUnexpected,
			"building hub request", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return entityState{}, types.NewAppError(types.ErrCodeUpstreamHubUnavailable,
			"sensor hub unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return entityState{}, types.NewAppErrorWithDetails(types.ErrCodeUpstreamEntityMissing,
			"entity not found on hub", nil,
			map[string]any{"entity_id": entityID})
	case resp.StatusCode != http.StatusOK:
		return entityState{}, types.NewAppErrorWithDetails(types.ErrCodeUpstreamHubUnavailable,
			"unexpected hub response", nil,
			map[string]any{"entity_id": entityID, "status": resp.StatusCode})
	}

	var state entityState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return entityState{}, types.NewAppErrorWithDetails(types.ErrCodeUpstreamHubUnavailable,
			"decoding hub response", err,
			map[string]any{"entity_id": entityID})
	}
	return state, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token.Unmask())
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// floatEntity fetches an entity and parses its state as a float.
func (c *Client) floatEntity(ctx context.Context, entityID string) (float64, error) {
	state, err := c.getEntity(ctx, entityID)
	if err != nil {
		return 0, err
	}
	if unusableState(state.State) {
		return 0, unavailableErr(entityID, state.State)
	}
	v, err := strconv.ParseFloat(state.State, 64)
	if err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
			"entity state is not numeric", err,
			map[string]any{"entity_id": entityID, "state": state.State})
	}
	return v, nil
}

// rainEntity fetches the rain sensor and interprets its state as a boolean.
// Hubs report rain either as a numeric flag or as a binary-sensor state.
func (c *Client) rainEntity(ctx context.Context, entityID string) (bool, error) {
	state, err := c.getEntity(ctx, entityID)
	if err != nil {
		return false, err
	}
	if unusableState(state.State) {
		return false, unavailableErr(entityID, state.State)
	}
	switch state.State {
	case "1", "on", "wet", "raining":
		return true, nil
	case "0", "off", "dry":
		return false, nil
	}
	return false, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
		"rain state not recognized", nil,
		map[string]any{"entity_id": entityID, "state": state.State})
}

// unusableState reports whether the hub marked the entity value unusable.
func unusableState(s string) bool {
	switch s {
	case "", "unavailable", "unknown", "none":
		return true
	}
	return false
}

func unavailableErr(entityID, state string) error {
	return types.NewAppErrorWithDetails(types.ErrCodeUpstreamEntityState,
		"entity state unavailable", nil,
		map[string]any{"entity_id": entityID, "state": state})
}

// attrFloat reads a numeric attribute from an entity. JSON numbers arrive as
// float64; some hubs serialize them as strings.
func attrFloat(state entityState, key string) (float64, error) {
	raw, ok := state.Attributes[key]
	if !ok {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
			"entity attribute missing", nil,
			map[string]any{"entity_id": state.EntityID, "attribute": key})
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f, nil
		}
	case json.Number:
		f, err := v.Float64()
		if err == nil {
			return f, nil
		}
	}
	return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
		"entity attribute is not numeric", nil,
		map[string]any{"entity_id": state.EntityID, "attribute": key, "value": raw})
}

// attrTime reads an RFC 3339 timestamp attribute from an entity.
func attrTime(state entityState, key string) (time.Time, error) {
	raw, ok := state.Attributes[key].(string)
	if !ok {
		return time.Time{}, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
			"entity timestamp attribute missing", nil,
			map[string]any{"entity_id": state.EntityID, "attribute": key})
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, types.NewAppErrorWithDetails(types.ErrCodeValidationEntityState,
			"entity timestamp attribute unparseable", err,
			map[string]any{"entity_id": state.EntityID, "attribute": key, "value": raw})
	}
	return ts, nil
}
