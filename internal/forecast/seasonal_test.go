package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

func TestForecastSeasonalLength(t *testing.T) {
	// Three full cycles of a period-4 pattern riding a gentle trend.
	observed := observedSeries(2013,
		10, 20, 15, 5,
		12, 22, 17, 7,
		14, 24, 19, 9,
	)

	result, err := ForecastSeasonal(observed, 4, 4)
	require.NoError(t, err)
	require.Len(t, result, 16)

	for i := range observed {
		assert.Equal(t, domain.KindObserved, result[i].Kind)
		assert.Equal(t, observed[i].Value, result[i].Value)
	}
	for _, p := range result[len(observed):] {
		assert.Equal(t, domain.KindForecast, p.Kind)
	}

	// The seasonal shape carries into the forecast: the second forecast
	// step lands on the high season and exceeds the low season step.
	forecast := result.Forecast()
	assert.Greater(t, forecast[1].Value, forecast[3].Value)
}

func TestForecastSeasonalValidation(t *testing.T) {
	tests := []struct {
		name     string
		observed domain.Series
		period   int
		horizon  int
	}{
		{"zero horizon", observedSeries(2020, 1, 2, 3, 4), 2, 0},
		{"period too small", observedSeries(2020, 1, 2, 3, 4), 1, 2},
		{"under two cycles", observedSeries(2020, 1, 2, 3, 4, 5), 4, 2},
		{"constant series", observedSeries(2020, 3, 3, 3, 3, 3, 3), 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForecastSeasonal(tt.observed, tt.period, tt.horizon)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeForecast))
		})
	}
}
