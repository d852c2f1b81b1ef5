package forecast

import (
	"math"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

// SeasonalModel holds the fitted state of an additive seasonal model.
type SeasonalModel struct {
	Alpha     float64
	Beta      float64
	Gamma     float64
	Level     float64
	Trend     float64
	Seasonals []float64
	Period    int
	steps     int
}

// ForecastSeasonal fits an additive Holt-Winters model with the given
// seasonal period and extends the series by horizon steps. At least two full
// seasonal cycles are required for the seasonal indices to be estimable.
func ForecastSeasonal(observed domain.Series, period, horizon int) (domain.Series, error) {
	if horizon <= 0 {
		return nil, apperrors.NewForecastError("forecast horizon must be positive", nil).
			WithContext("horizon", horizon)
	}
	if period < 2 {
		return nil, apperrors.NewForecastError("seasonal period must be at least 2", nil).
			WithContext("period", period)
	}
	if len(observed) < 2*period {
		return nil, apperrors.NewForecastError("seasonal fit needs at least two full cycles", nil).
			WithContext("observations", len(observed)).
			WithContext("period", period)
	}

	values := make([]float64, len(observed))
	for i, p := range observed {
		values[i] = p.Value
	}
	if isConstant(values) {
		return nil, apperrors.NewForecastError("input series has zero variance", nil)
	}

	var best *SeasonalModel
	bestSSE := math.Inf(1)
	for alpha := gridMin; alpha <= gridMax+1e-9; alpha += gridStep {
		for beta := gridMin; beta <= gridMax+1e-9; beta += gridStep {
			for gamma := gridMin; gamma <= gridMax+1e-9; gamma += gridStep {
				m, sse := smoothSeasonal(values, period, alpha, beta, gamma)
				if sse < bestSSE {
					best, bestSSE = m, sse
				}
			}
		}
	}

	out := make(domain.Series, 0, len(observed)+horizon)
	for _, p := range observed {
		out = append(out, domain.SeriesPoint{Year: p.Year, Value: p.Value, Kind: domain.KindObserved})
	}
	lastYear := observed[len(observed)-1].Year
	for h := 1; h <= horizon; h++ {
		out = append(out, domain.SeriesPoint{
			Year:  lastYear + h,
			Value: best.predict(h),
			Kind:  domain.KindForecast,
		})
	}
	return out, nil
}

// predict returns the h-step-ahead point forecast.
func (m *SeasonalModel) predict(h int) float64 {
	idx := (m.steps + h - 1) % m.Period
	return m.Level + float64(h)*m.Trend + m.Seasonals[idx]
}

func smoothSeasonal(values []float64, period int, alpha, beta, gamma float64) (*SeasonalModel, float64) {
	// Initial state from the first two cycles.
	var firstMean, secondMean float64
	for i := 0; i < period; i++ {
		firstMean += values[i]
		secondMean += values[period+i]
	}
	firstMean /= float64(period)
	secondMean /= float64(period)

	level := firstMean
	trend := (secondMean - firstMean) / float64(period)
	seasonals := make([]float64, period)
	for i := 0; i < period; i++ {
		seasonals[i] = values[i] - firstMean
	}

	var sse float64
	for t := period; t < len(values); t++ {
		idx := t % period
		predicted := level + trend + seasonals[idx]
		err := values[t] - predicted
		sse += err * err

		prevLevel := level
		level = alpha*(values[t]-seasonals[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonals[idx] = gamma*(values[t]-level) + (1-gamma)*seasonals[idx]
	}

	return &SeasonalModel{
		Alpha:     alpha,
		Beta:      beta,
		Gamma:     gamma,
		Level:     level,
		Trend:     trend,
		Seasonals: seasonals,
		Period:    period,
		steps:     len(values),
	}, sse
}
