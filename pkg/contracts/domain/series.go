package domain

// PointKind distinguishes observed history from model output in a series.
type PointKind string

const (
	KindObserved PointKind = "observed"
	KindForecast PointKind = "forecast"
)

// SeriesPoint is one (year, value) pair of an annual time series.
type SeriesPoint struct {
	Year  int       `json:"year"`
	Value float64   `json:"value"`
	Kind  PointKind `json:"kind"`
}

// Series is an ordered annual sequence, observed points first, forecast
// points after. Produced on demand and never cached across sessions.
type Series []SeriesPoint

// Observed returns the observed prefix of the series.
func (s Series) Observed() Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if p.Kind == KindObserved {
			out = append(out, p)
		}
	}
	return out
}

// Forecast returns the forecast suffix of the series.
func (s Series) Forecast() Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if p.Kind == KindForecast {
			out = append(out, p)
		}
	}
	return out
}
