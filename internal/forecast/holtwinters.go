// Package forecast fits Holt-Winters exponential smoothing models to annual
// aggregate series and produces point forecasts. The dashboard uses the
// additive-trend (Holt linear) form, which matches annual national series
// with no seasonal cycle; an additive seasonal form is available for series
// that do have one.
package forecast

import (
	"math"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

// smoothing grid searched when fitting. Matching the estimated-initialization
// behavior of reference implementations exactly is not a goal; minimizing
// one-step-ahead squared error over this grid is stable and reproducible.
const (
	gridMin  = 0.05
	gridMax  = 0.95
	gridStep = 0.05
)

// Model holds fitted smoothing parameters and final state.
type Model struct {
	Alpha float64
	Beta  float64
	Level float64
	Trend float64
	SSE   float64
}

// Forecast fits an additive-trend model to the observed series and extends
// it by horizon years. The returned series round-trips the observed input
// exactly, followed by the forecast points tagged domain.KindForecast.
func Forecast(observed domain.Series, horizon int) (domain.Series, error) {
	if horizon <= 0 {
		return nil, apperrors.NewForecastError("forecast horizon must be positive", nil).
			WithContext("horizon", horizon)
	}

	values := make([]float64, len(observed))
	for i, p := range observed {
		values[i] = p.Value
	}

	model, err := Fit(values)
	if err != nil {
		return nil, err
	}

	out := make(domain.Series, 0, len(observed)+horizon)
	for _, p := range observed {
		out = append(out, domain.SeriesPoint{Year: p.Year, Value: p.Value, Kind: domain.KindObserved})
	}

	lastYear := observed[len(observed)-1].Year
	for h := 1; h <= horizon; h++ {
		out = append(out, domain.SeriesPoint{
			Year:  lastYear + h,
			Value: model.Level + float64(h)*model.Trend,
			Kind:  domain.KindForecast,
		})
	}
	return out, nil
}

// ForecastToYear extends the observed series through targetYear inclusive.
func ForecastToYear(observed domain.Series, targetYear int) (domain.Series, error) {
	if len(observed) == 0 {
		return nil, apperrors.NewForecastError("input series is empty", nil)
	}
	horizon := targetYear - observed[len(observed)-1].Year
	if horizon <= 0 {
		return nil, apperrors.NewForecastError("target year is not after the observed series", nil).
			WithContext("target_year", targetYear)
	}
	return Forecast(observed, horizon)
}

// Fit estimates an additive-trend model by grid search over the smoothing
// parameters. The series must have at least two points and non-zero
// variance; a degenerate series cannot anchor a trend and is rejected.
func Fit(values []float64) (*Model, error) {
	if len(values) < 2 {
		return nil, apperrors.NewForecastError("input series too short to fit a trend model", nil).
			WithContext("observations", len(values))
	}
	if isConstant(values) {
		return nil, apperrors.NewForecastError("input series has zero variance", nil)
	}

	best := &Model{SSE: math.Inf(1)}
	for alpha := gridMin; alpha <= gridMax+1e-9; alpha += gridStep {
		for beta := gridMin; beta <= gridMax+1e-9; beta += gridStep {
			m := smooth(values, alpha, beta)
			if m.SSE < best.SSE {
				best = m
			}
		}
	}
	return best, nil
}

// smooth runs Holt's linear recursion with fixed parameters and accumulates
// the one-step-ahead squared error.
func smooth(values []float64, alpha, beta float64) *Model {
	level := values[0]
	trend := values[1] - values[0]

	var sse float64
	for t := 1; t < len(values); t++ {
		predicted := level + trend
		err := values[t] - predicted
		sse += err * err

		prevLevel := level
		level = alpha*values[t] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	return &Model{Alpha: alpha, Beta: beta, Level: level, Trend: trend, SSE: sse}
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if math.Abs(v-values[0]) > 1e-12 {
			return false
		}
	}
	return true
}
