package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

func observedSeries(start int, values ...float64) domain.Series {
	s := make(domain.Series, len(values))
	for i, v := range values {
		s[i] = domain.SeriesPoint{Year: start + i, Value: v, Kind: domain.KindObserved}
	}
	return s
}

func TestForecastExtendsLinearSeries(t *testing.T) {
	observed := observedSeries(2020, 10, 12, 14, 16, 18)

	result, err := Forecast(observed, 6)
	require.NoError(t, err)
	require.Len(t, result, 11)

	// Observed points round-trip unchanged.
	for i, p := range observed {
		assert.Equal(t, p.Year, result[i].Year)
		assert.Equal(t, p.Value, result[i].Value)
		assert.Equal(t, domain.KindObserved, result[i].Kind)
	}

	// A perfectly linear series continues on the same slope.
	for h := 1; h <= 6; h++ {
		p := result[len(observed)+h-1]
		assert.Equal(t, 2024+h, p.Year)
		assert.Equal(t, domain.KindForecast, p.Kind)
		assert.InDelta(t, 18+2*float64(h), p.Value, 1e-6)
	}
}

func TestForecastValidation(t *testing.T) {
	tests := []struct {
		name     string
		observed domain.Series
		horizon  int
	}{
		{"zero horizon", observedSeries(2020, 1, 2, 3), 0},
		{"negative horizon", observedSeries(2020, 1, 2, 3), -1},
		{"single point", observedSeries(2020, 5), 3},
		{"constant series", observedSeries(2020, 7, 7, 7, 7), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Forecast(tt.observed, tt.horizon)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeForecast))
		})
	}
}

func TestForecastToYear(t *testing.T) {
	observed := observedSeries(2020, 100, 110, 125, 133, 150)

	result, err := ForecastToYear(observed, 2030)
	require.NoError(t, err)
	require.Len(t, result, 11)
	assert.Equal(t, 2030, result[len(result)-1].Year)
	assert.Equal(t, domain.KindForecast, result[len(result)-1].Kind)

	forecast := result.Forecast()
	require.Len(t, forecast, 6)
	// An increasing series keeps increasing under an additive trend.
	assert.Greater(t, forecast[len(forecast)-1].Value, observed[len(observed)-1].Value)
}

func TestForecastToYearRejectsPastTarget(t *testing.T) {
	observed := observedSeries(2020, 1, 2, 3, 4, 5)

	_, err := ForecastToYear(observed, 2024)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeForecast))

	_, err = ForecastToYear(nil, 2030)
	require.Error(t, err)
}

func TestFitMinimizesOneStepError(t *testing.T) {
	m, err := Fit([]float64{10, 12, 14, 16, 18})
	require.NoError(t, err)

	// The recursion reproduces a linear series exactly.
	assert.InDelta(t, 0, m.SSE, 1e-9)
	assert.InDelta(t, 18, m.Level, 1e-9)
	assert.InDelta(t, 2, m.Trend, 1e-9)
}

func TestFitNoisySeries(t *testing.T) {
	m, err := Fit([]float64{100, 108, 103, 115, 121, 118, 130})
	require.NoError(t, err)

	assert.Greater(t, m.SSE, 0.0)
	assert.GreaterOrEqual(t, m.Alpha, gridMin)
	assert.LessOrEqual(t, m.Alpha, gridMax+1e-9)
	assert.GreaterOrEqual(t, m.Beta, gridMin)
	assert.LessOrEqual(t, m.Beta, gridMax+1e-9)
}
