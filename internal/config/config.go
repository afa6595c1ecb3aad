// Package config defines the configuration for the GrassWatch daemon.
// Configuration is loaded once at process startup and is immutable
// thereafter; it strictly separates code from configuration in the
// 12-Factor manner.
//
// Values are resolved from the OS environment, with a local .env file as
// a fallback for development. Any missing required value or invalid format
// aborts startup (fail fast); model tunable violations surface as
// configuration errors before the first cycle ever runs.
package config

import (
	"time"

	"grasswatch/internal/model"
	"grasswatch/internal/types"
)

// Config is the top-level configuration for the daemon. Sub-components
// receive only the subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server ServerConfig
	Hub    HubConfig
	Poll   PollConfig
	Model  ModelConfig
}

// ServerConfig holds the read-API HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HubConfig holds the sensor hub connection and the entity IDs the host
// adapter reads each cycle.
type HubConfig struct {
	BaseURL string             `envconfig:"HUB_BASE_URL" validate:"required,url"` // e.g., http://homeassistant.local:8123
	Token   types.SecretString `envconfig:"HUB_TOKEN" validate:"required"`
	Timeout time.Duration      `envconfig:"HUB_TIMEOUT" default:"10s"`

	TemperatureEntity string `envconfig:"HUB_ENTITY_TEMPERATURE" default:"sensor.outside_temperature"`
	HumidityEntity    string `envconfig:"HUB_ENTITY_HUMIDITY" default:"sensor.outside_humidity"`
	SolarEntity       string `envconfig:"HUB_ENTITY_SOLAR" default:"sensor.solar_total_power"`
	RainEntity        string `envconfig:"HUB_ENTITY_RAIN" default:"sensor.rain_sensor"`
	WeatherEntity     string `envconfig:"HUB_ENTITY_WEATHER" default:"weather.forecast_home"`
	SunEntity         string `envconfig:"HUB_ENTITY_SUN" default:"sun.sun"`
}

// PollConfig holds the cycle cadence settings.
type PollConfig struct {
	// Interval between cycles. The sunset reset window (5 minutes) assumes
	// the cadence is no slower than this default.
	Interval time.Duration `envconfig:"POLL_INTERVAL" default:"5m"`
	// StaleAfter is how old the last successful cycle may be before the
	// health endpoint reports the service unhealthy.
	StaleAfter time.Duration `envconfig:"POLL_STALE_AFTER" default:"20m"`
}

// ModelConfig exposes every physical-model tunable as an environment
// override. Defaults mirror model.DefaultParams; see internal/model for the
// meaning of each constant.
type ModelConfig struct {
	MaxSolarW               float64 `envconfig:"MODEL_MAX_SOLAR_W" default:"6000"`
	MinDryTempC             float64 `envconfig:"MODEL_MIN_DRY_TEMP_C" default:"8"`
	MaxDryTempC             float64 `envconfig:"MODEL_MAX_DRY_TEMP_C" default:"30"`
	MaxEffectiveWindKmh     float64 `envconfig:"MODEL_MAX_EFFECTIVE_WIND_KMH" default:"30"`
	WeightTemp              float64 `envconfig:"MODEL_WEIGHT_TEMP" default:"0.15"`
	WeightWind              float64 `envconfig:"MODEL_WEIGHT_WIND" default:"0.10"`
	MasterDryingCoefficient float64 `envconfig:"MODEL_MASTER_DRYING_COEFFICIENT" default:"0.02"`
	HumidityThresholdPct    float64 `envconfig:"MODEL_HUMIDITY_THRESHOLD_PCT" default:"85"`
	DewTempDifference       float64 `envconfig:"MODEL_DEW_TEMP_DIFFERENCE" default:"2.0"`
	DewMoistCap             float64 `envconfig:"MODEL_DEW_MOIST_CAP" default:"0.6"`
	DewResetHour            int     `envconfig:"MODEL_DEW_RESET_HOUR" default:"12"`
	WettingIncrement        float64 `envconfig:"MODEL_WETTING_INCREMENT" default:"0.05"`
	InitialMoisture         float64 `envconfig:"MODEL_INITIAL_MOISTURE" default:"0"`
}

// Params converts the environment-facing tunables into model.Params.
// The ordering constraints are enforced by model.Params.Validate at
// construction, not here.
func (m ModelConfig) Params() model.Params {
	return model.Params{
		MaxSolarW:               m.MaxSolarW,
		MinDryTempC:             m.MinDryTempC,
		MaxDryTempC:             m.MaxDryTempC,
		MaxEffectiveWindKmh:     m.MaxEffectiveWindKmh,
		WeightTemp:              m.WeightTemp,
		WeightWind:              m.WeightWind,
		MasterDryingCoefficient: m.MasterDryingCoefficient,
		HumidityThresholdPct:    m.HumidityThresholdPct,
		DewTempDifference:       m.DewTempDifference,
		DewMoistCap:             m.DewMoistCap,
		DewResetHour:            m.DewResetHour,
		WettingIncrement:        m.WettingIncrement,
		InitialMoisture:         m.InitialMoisture,
	}
}
