package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"

	"svpulse/internal/dataload"
	apperrors "svpulse/internal/errors"
	"svpulse/internal/infrastructure"
	"svpulse/pkg/contracts/domain"
)

// Dimension selects the grouping key for annual volume tables.
type Dimension string

const (
	ByRegion   Dimension = "region"
	ByDistrict Dimension = "district"
)

// Processor computes grouped aggregates over loaded tables.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Processor{logger: logger.With(slog.String("component", "processor"))}
}

// FilterRegion keeps records for one region; "All" or "" passes everything.
func FilterRegion(records []domain.ProcedureRecord, region string) []domain.ProcedureRecord {
	if region == "" || strings.EqualFold(region, "All") {
		return records
	}
	key := dataload.NormalizeKey(region)
	out := make([]domain.ProcedureRecord, 0, len(records))
	for _, r := range records {
		if dataload.NormalizeKey(r.Region) == key {
			out = append(out, r)
		}
	}
	return out
}

// PopulationIndex sums census entries per normalized district key and per
// normalized region key. Region figures come from summing member districts.
type PopulationIndex struct {
	byDistrict map[string]int64
	byRegion   map[string]int64
	total      int64
}

// NewPopulationIndex builds the lookup used by all rate calculations.
func NewPopulationIndex(entries []domain.PopulationEntry) *PopulationIndex {
	idx := &PopulationIndex{
		byDistrict: make(map[string]int64),
		byRegion:   make(map[string]int64),
	}
	for _, e := range entries {
		idx.byDistrict[dataload.NormalizeKey(e.District)] += e.Population
		if e.Region != "" {
			idx.byRegion[dataload.NormalizeKey(e.Region)] += e.Population
		}
		idx.total += e.Population
	}
	return idx
}

// District returns the population for a district, 0 when unknown.
func (p *PopulationIndex) District(name string) int64 {
	return p.byDistrict[dataload.NormalizeKey(name)]
}

// Region returns the population for a region, 0 when unknown.
func (p *PopulationIndex) Region(name string) int64 {
	return p.byRegion[dataload.NormalizeKey(name)]
}

// Total returns the national population.
func (p *PopulationIndex) Total() int64 {
	return p.total
}

// rate computes procedures per 10,000 population, or nil when the population
// is unknown or zero. A missing rate is absent, never zero.
func rate(procedures, population int64) *float64 {
	if population <= 0 {
		return nil
	}
	r := float64(procedures) / float64(population) * domain.RatePer
	return &r
}

// AnnualVolumes computes the annual volume and rate table grouped by region
// or district: summed procedure counts, distinct reporting facilities, and
// the joined population with its rate where known.
func (p *Processor) AnnualVolumes(records []domain.ProcedureRecord, pop *PopulationIndex, dim Dimension) []domain.AggregateRow {
	type group struct {
		name       string
		year       int
		procedures int64
		facilities map[string]struct{}
	}
	groups := make(map[string]*group)

	for _, r := range records {
		name := r.Region
		if dim == ByDistrict {
			name = r.District
		}
		if name == "" {
			continue
		}
		key := dataload.NormalizeKey(name)
		g, ok := groups[key]
		if !ok {
			g = &group{name: name, year: r.Year, facilities: make(map[string]struct{})}
			groups[key] = g
		}
		g.procedures += r.Procedures
		if r.FacilityCode != "" {
			g.facilities[r.FacilityCode] = struct{}{}
		}
	}

	rows := make([]domain.AggregateRow, 0, len(groups))
	for _, g := range groups {
		var population int64
		if dim == ByDistrict {
			population = pop.District(g.name)
		} else {
			population = pop.Region(g.name)
		}
		rows = append(rows, domain.AggregateRow{
			Key:        g.name,
			Year:       g.year,
			Procedures: g.procedures,
			Facilities: len(g.facilities),
			Population: population,
			Rate:       rate(g.procedures, population),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// CategoryTotals sums procedure counts per category.
func (p *Processor) CategoryTotals(records []domain.ProcedureRecord) []domain.AggregateRow {
	type group struct {
		name       string
		year       int
		procedures int64
	}
	groups := make(map[string]*group)
	for _, r := range records {
		if r.Category == "" {
			continue
		}
		key := dataload.NormalizeKey(r.Category)
		g, ok := groups[key]
		if !ok {
			g = &group{name: r.Category, year: r.Year}
			groups[key] = g
		}
		g.procedures += r.Procedures
	}

	rows := make([]domain.AggregateRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.AggregateRow{
			Key:        g.name,
			Year:       g.year,
			Procedures: g.procedures,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// FacilityDistribution counts facilities per region and group. The group is
// the facility level or, when byOwnership is set, the ownership category.
func (p *Processor) FacilityDistribution(facilities []domain.Facility, byOwnership bool) []domain.DistributionRow {
	counts := make(map[[2]string]int)
	labels := make(map[[2]string][2]string)
	for _, f := range facilities {
		group := f.Level
		if byOwnership {
			group = f.Ownership
		}
		if f.Region == "" || group == "" {
			continue
		}
		key := [2]string{dataload.NormalizeKey(f.Region), dataload.NormalizeKey(group)}
		counts[key]++
		labels[key] = [2]string{f.Region, group}
	}

	rows := make([]domain.DistributionRow, 0, len(counts))
	for key, n := range counts {
		rows = append(rows, domain.DistributionRow{
			Region: labels[key][0],
			Group:  labels[key][1],
			Count:  n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Region != rows[j].Region {
			return rows[i].Region < rows[j].Region
		}
		return rows[i].Group < rows[j].Group
	})
	return rows
}

// Heatmap joins per-district aggregates to their map geometry key. Districts
// with no matching shape are excluded from map output; the exclusion is
// logged at debug level, not reported as an error.
func (p *Processor) Heatmap(records []domain.ProcedureRecord, pop *PopulationIndex, shapes map[string]domain.GeoShape) []domain.HeatmapRow {
	volumes := p.AnnualVolumes(records, pop, ByDistrict)

	rows := make([]domain.HeatmapRow, 0, len(volumes))
	for _, v := range volumes {
		shapeKey := dataload.NormalizeKey(v.Key)
		if _, ok := shapes[shapeKey]; !ok {
			p.logger.Debug("district has no map shape, excluded from heatmap",
				slog.String("district", v.Key))
			continue
		}
		rows = append(rows, domain.HeatmapRow{
			District:   v.Key,
			Procedures: v.Procedures,
			Population: v.Population,
			Rate:       v.Rate,
			ShapeKey:   shapeKey,
		})
	}
	return rows
}

// Summary holds the national KPI figures for one year.
type Summary struct {
	Year                int      `json:"year"`
	TotalProcedures     int64    `json:"total_procedures"`
	ReportingFacilities int      `json:"reporting_facilities"`
	Rate                *float64 `json:"rate,omitempty"`
}

// NationalSummary computes the KPI block: total procedures, distinct
// reporting facilities and the national rate per 10,000.
func (p *Processor) NationalSummary(year int, records []domain.ProcedureRecord, pop *PopulationIndex) Summary {
	var total int64
	facilities := make(map[string]struct{})
	for _, r := range records {
		total += r.Procedures
		if r.FacilityCode != "" {
			facilities[r.FacilityCode] = struct{}{}
		}
	}
	return Summary{
		Year:                year,
		TotalProcedures:     total,
		ReportingFacilities: len(facilities),
		Rate:                rate(total, pop.Total()),
	}
}

// RegionalSummary computes the KPI block for a single region. The rate
// denominator is the region's population, not the national total.
func (p *Processor) RegionalSummary(year int, records []domain.ProcedureRecord, pop *PopulationIndex, region string) Summary {
	var total int64
	facilities := make(map[string]struct{})
	for _, r := range FilterRegion(records, region) {
		total += r.Procedures
		if r.FacilityCode != "" {
			facilities[r.FacilityCode] = struct{}{}
		}
	}
	return Summary{
		Year:                year,
		TotalProcedures:     total,
		ReportingFacilities: len(facilities),
		Rate:                rate(total, pop.Region(region)),
	}
}

// CheckJoin verifies that the procedure and population tables share at least
// one district key. A fully disjoint key set means the wrong files were
// paired and is surfaced as a JoinError warning.
func CheckJoin(records []domain.ProcedureRecord, pop *PopulationIndex) error {
	if len(records) == 0 || len(pop.byDistrict) == 0 {
		return nil
	}
	for _, r := range records {
		if pop.District(r.District) > 0 {
			return nil
		}
	}
	return apperrors.NewJoinError("no district key overlap between procedure and population tables", nil)
}
