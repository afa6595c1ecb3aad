package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"grasswatch/internal/types"
)

// Load resolves the full configuration from the environment.
//
// Resolution order: OS environment (highest) -> .env file. The .env load is
// best-effort; a missing file is the normal case outside local development.
// Struct validation runs after population so a bad value is reported with
// its field path instead of failing somewhere deep in the wiring.
func Load() (*Config, error) {
	// Existing environment variables win over .env entries.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigLoad,
			"parsing environment configuration", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigLoad,
			"validating configuration", err)
	}

	// Model tunables are validated by the same rules the model itself
	// enforces, so a bad calibration fails here at startup.
	if err := cfg.Model.Params().Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
