package model

import (
	"errors"
	"testing"

	"grasswatch/internal/types"
)

func TestDefaultParams_Valid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params must validate: %v", err)
	}
}

func TestParamsValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		code   types.ErrorCode
	}{
		{"temp ordering equal", func(p *Params) { p.MinDryTempC = 30; p.MaxDryTempC = 30 }, types.ErrCodeConfigTempOrdering},
		{"temp ordering inverted", func(p *Params) { p.MinDryTempC = 35 }, types.ErrCodeConfigTempOrdering},
		{"zero solar saturation", func(p *Params) { p.MaxSolarW = 0 }, types.ErrCodeConfigRange},
		{"zero wind saturation", func(p *Params) { p.MaxEffectiveWindKmh = 0 }, types.ErrCodeConfigRange},
		{"negative weight", func(p *Params) { p.WeightTemp = -0.1 }, types.ErrCodeConfigRange},
		{"negative master coefficient", func(p *Params) { p.MasterDryingCoefficient = -1 }, types.ErrCodeConfigRange},
		{"humidity threshold zero", func(p *Params) { p.HumidityThresholdPct = 0 }, types.ErrCodeConfigRange},
		{"humidity threshold above 100", func(p *Params) { p.HumidityThresholdPct = 101 }, types.ErrCodeConfigRange},
		{"dew cap above 1", func(p *Params) { p.DewMoistCap = 1.5 }, types.ErrCodeConfigRange},
		{"reset hour out of range", func(p *Params) { p.DewResetHour = 24 }, types.ErrCodeConfigRange},
		{"negative wetting increment", func(p *Params) { p.WettingIncrement = -0.01 }, types.ErrCodeConfigRange},
		{"initial moisture above 1", func(p *Params) { p.InitialMoisture = 2 }, types.ErrCodeConfigRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)

			err := p.Validate()
			if err == nil {
				t.Fatal("expected a config error")
			}
			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *types.AppError, got %T", err)
			}
			if appErr.Code != tt.code {
				t.Fatalf("code = %s, want %s", appErr.Code, tt.code)
			}
		})
	}
}
