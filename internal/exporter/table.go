package exporter

import (
	"fmt"

	"svpulse/internal/dataprocessing"
	"svpulse/pkg/contracts/domain"
)

// Table is a finished display table ready for export. An empty Rows slice is
// valid and exports as a header-only document.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// formatRate renders a rate cell; missing rates export as an empty cell,
// never as zero.
func formatRate(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *r)
}

// AnnualVolumesTable builds the annual volumes and rates table.
func AnnualVolumesTable(dim dataprocessing.Dimension, rows []domain.AggregateRow) Table {
	keyHeader := "Region"
	if dim == dataprocessing.ByDistrict {
		keyHeader = "District"
	}
	t := Table{
		Title:   "Annual Surgical Volumes & Rates",
		Headers: []string{keyHeader, "Year", "Procedures", "Reporting Facilities", "Population", "Rate per 10,000"},
	}
	for _, r := range rows {
		population := ""
		if r.Population > 0 {
			population = fmt.Sprintf("%d", r.Population)
		}
		t.Rows = append(t.Rows, []string{
			r.Key,
			fmt.Sprintf("%d", r.Year),
			fmt.Sprintf("%d", r.Procedures),
			fmt.Sprintf("%d", r.Facilities),
			population,
			formatRate(r.Rate),
		})
	}
	return t
}

// CategoryTable builds the procedures-by-category table.
func CategoryTable(rows []domain.AggregateRow) Table {
	t := Table{
		Title:   "Surgical Procedures by Category",
		Headers: []string{"Category", "Procedures"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Key, fmt.Sprintf("%d", r.Procedures)})
	}
	return t
}

// DistributionTable builds the facility distribution table.
func DistributionTable(rows []domain.DistributionRow, byOwnership bool) Table {
	group := "Facility Level"
	if byOwnership {
		group = "Ownership"
	}
	t := Table{
		Title:   "Facility Distribution",
		Headers: []string{"Region", group, "Facilities"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Region, r.Group, fmt.Sprintf("%d", r.Count)})
	}
	return t
}

// HeatmapTable builds the district heatmap backing table.
func HeatmapTable(rows []domain.HeatmapRow) Table {
	t := Table{
		Title:   "Surgical Procedure Rates by District",
		Headers: []string{"District", "Procedures", "Population", "Rate per 10,000"},
	}
	for _, r := range rows {
		population := ""
		if r.Population > 0 {
			population = fmt.Sprintf("%d", r.Population)
		}
		t.Rows = append(t.Rows, []string{
			r.District,
			fmt.Sprintf("%d", r.Procedures),
			population,
			formatRate(r.Rate),
		})
	}
	return t
}

// SeriesTable builds the observed-and-forecast time series table.
func SeriesTable(series domain.Series) Table {
	t := Table{
		Title:   "Procedures per 10,000 by Year",
		Headers: []string{"Year", "Rate per 10,000", "Kind"},
	}
	for _, p := range series {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("%.1f", p.Value),
			string(p.Kind),
		})
	}
	return t
}

// TrendTable builds the national trend table.
func TrendTable(rows []dataprocessing.TrendRow) Table {
	t := Table{
		Title:   "National Trend",
		Headers: []string{"Year", "Procedures", "Rate per 10,000"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Year),
			fmt.Sprintf("%d", r.Procedures),
			formatRate(r.Rate),
		})
	}
	return t
}
