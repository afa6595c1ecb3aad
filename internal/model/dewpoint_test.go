package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasswatch/internal/types"
)

func TestDewPoint_ReferenceValue(t *testing.T) {
	// Magnus-Tetens with A=17.27, B=237.7 at 20 degC / 65% RH.
	got, err := DewPoint(20.0, 65.0)
	require.NoError(t, err)
	assert.InDelta(t, 13.215, got, 0.05)
}

func TestDewPoint_Saturation(t *testing.T) {
	// At 100% RH the dew point equals the air temperature.
	got, err := DewPoint(15.0, 100.0)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, got, 1e-9)
}

func TestDewPoint_AlwaysBelowTemperature(t *testing.T) {
	for _, temp := range []float64{-20, -5, 0, 10, 25, 45} {
		for _, rh := range []float64{1, 20, 50, 80, 99} {
			got, err := DewPoint(temp, rh)
			require.NoError(t, err)
			assert.Less(t, got, temp, "temp=%v rh=%v", temp, rh)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		}
	}
}

func TestDewPoint_DomainErrors(t *testing.T) {
	for _, rh := range []float64{0, -1, 100.1, 250} {
		_, err := DewPoint(20.0, rh)
		require.Error(t, err, "rh=%v", rh)

		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeArithmeticDewPoint, appErr.Code)
	}
}
