package domain

// RatePer is the population denominator used for normalized procedure rates:
// procedures per 10,000 population.
const RatePer = 10_000

// AggregateRow is a grouped rollup of procedure records for one grouping key
// (district, region or category) in one year. Rate is nil when the population
// for the key is unknown or zero; a missing rate is absent, never zero.
type AggregateRow struct {
	Key        string   `json:"key"`
	Year       int      `json:"year"`
	Procedures int64    `json:"procedures"`
	Facilities int      `json:"facilities"`
	Population int64    `json:"population,omitempty"`
	Rate       *float64 `json:"rate,omitempty"`
}

// DistributionRow is one cell of the facility distribution matrix:
// the number of facilities of one level (or ownership) in one region.
type DistributionRow struct {
	Region string `json:"region"`
	Group  string `json:"group"`
	Count  int    `json:"count"`
}

// HeatmapRow is a district aggregate joined to its map geometry key.
// Only districts that resolved to a known shape appear in heatmap output.
type HeatmapRow struct {
	District   string   `json:"district"`
	Procedures int64    `json:"procedures"`
	Population int64    `json:"population,omitempty"`
	Rate       *float64 `json:"rate,omitempty"`
	ShapeKey   string   `json:"shape_key"`
}
