package dataprocessing

import (
	"sort"
	"strings"

	"svpulse/pkg/contracts/domain"
)

// TrendRow is one year of the national trend table.
type TrendRow struct {
	Year       int      `json:"year"`
	Procedures int64    `json:"procedures"`
	Rate       *float64 `json:"rate,omitempty"`
}

// TrendSeries computes procedures and rate per year from the per-year record
// sets. An empty region or "All" gives the national series; otherwise records
// are filtered to the region and its population is the rate denominator.
// Years appear in ascending order.
func (p *Processor) TrendSeries(byYear map[int][]domain.ProcedureRecord, pop *PopulationIndex, region string) []TrendRow {
	denominator := pop.Total()
	if region != "" && !strings.EqualFold(region, "All") {
		denominator = pop.Region(region)
	}
	rows := make([]TrendRow, 0, len(byYear))
	for year, records := range byYear {
		var total int64
		for _, r := range FilterRegion(records, region) {
			total += r.Procedures
		}
		rows = append(rows, TrendRow{
			Year:       year,
			Procedures: total,
			Rate:       rate(total, denominator),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// RateSeries extracts the observed rate series for forecasting. Years
// without a computable rate are skipped.
func RateSeries(rows []TrendRow) domain.Series {
	series := make(domain.Series, 0, len(rows))
	for _, row := range rows {
		if row.Rate == nil {
			continue
		}
		series = append(series, domain.SeriesPoint{
			Year:  row.Year,
			Value: *row.Rate,
			Kind:  domain.KindObserved,
		})
	}
	return series
}
