package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

func testRecords() []domain.ProcedureRecord {
	return []domain.ProcedureRecord{
		{FacilityCode: "F1", District: "Kampala", Region: "Central", Year: 2024, Category: "Caesarean Section", Procedures: 400},
		{FacilityCode: "F1", District: "Kampala", Region: "Central", Year: 2024, Category: "Orthopaedic", Procedures: 100},
		{FacilityCode: "F2", District: "Wakiso", Region: "Central", Year: 2024, Category: "Caesarean Section", Procedures: 250},
		{FacilityCode: "F3", District: "Gulu", Region: "Northern", Year: 2024, Category: "General Surgery", Procedures: 150},
		{FacilityCode: "F4", District: "Gulu", Region: "Northern", Year: 2024, Category: "Caesarean Section", Procedures: 100},
	}
}

func testPopulation() *PopulationIndex {
	return NewPopulationIndex([]domain.PopulationEntry{
		{District: "Kampala", Region: "Central", Population: 1_000_000},
		{District: "Wakiso", Region: "Central", Population: 2_000_000},
		{District: "Gulu", Region: "Northern", Population: 500_000},
	})
}

func TestAnnualVolumesByRegion(t *testing.T) {
	p := NewProcessor(nil)
	rows := p.AnnualVolumes(testRecords(), testPopulation(), ByRegion)

	require.Len(t, rows, 2)
	assert.Equal(t, "Central", rows[0].Key)
	assert.Equal(t, int64(750), rows[0].Procedures)
	assert.Equal(t, 2, rows[0].Facilities)
	assert.Equal(t, int64(3_000_000), rows[0].Population)
	require.NotNil(t, rows[0].Rate)
	assert.InDelta(t, 2.5, *rows[0].Rate, 1e-9)

	assert.Equal(t, "Northern", rows[1].Key)
	assert.Equal(t, int64(250), rows[1].Procedures)
	assert.Equal(t, 2, rows[1].Facilities)
	require.NotNil(t, rows[1].Rate)
	assert.InDelta(t, 5.0, *rows[1].Rate, 1e-9)
}

func TestAnnualVolumesDistrictSumsMatchNational(t *testing.T) {
	p := NewProcessor(nil)
	records := testRecords()
	pop := testPopulation()

	rows := p.AnnualVolumes(records, pop, ByDistrict)
	var districtTotal int64
	for _, r := range rows {
		districtTotal += r.Procedures
	}

	summary := p.NationalSummary(2024, records, pop)
	assert.Equal(t, summary.TotalProcedures, districtTotal)
}

func TestAnnualVolumesUnknownPopulation(t *testing.T) {
	p := NewProcessor(nil)
	records := []domain.ProcedureRecord{
		{FacilityCode: "F9", District: "Newdistrict", Region: "Eastern", Year: 2024, Procedures: 50},
	}

	rows := p.AnnualVolumes(records, testPopulation(), ByDistrict)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(50), rows[0].Procedures)
	assert.Nil(t, rows[0].Rate)
	assert.Zero(t, rows[0].Population)
}

func TestFilterRegion(t *testing.T) {
	records := testRecords()

	assert.Len(t, FilterRegion(records, ""), 5)
	assert.Len(t, FilterRegion(records, "All"), 5)
	assert.Len(t, FilterRegion(records, "all"), 5)

	northern := FilterRegion(records, "northern")
	require.Len(t, northern, 2)
	for _, r := range northern {
		assert.Equal(t, "Northern", r.Region)
	}

	assert.Empty(t, FilterRegion(records, "Western"))
}

func TestCategoryTotals(t *testing.T) {
	p := NewProcessor(nil)
	rows := p.CategoryTotals(testRecords())

	require.Len(t, rows, 3)
	assert.Equal(t, "Caesarean Section", rows[0].Key)
	assert.Equal(t, int64(750), rows[0].Procedures)
	assert.Equal(t, "General Surgery", rows[1].Key)
	assert.Equal(t, "Orthopaedic", rows[2].Key)
}

func TestFacilityDistribution(t *testing.T) {
	facilities := []domain.Facility{
		{Code: "F1", Region: "Central", Level: "Hospital", Ownership: "Government"},
		{Code: "F2", Region: "Central", Level: "Hospital", Ownership: "PNFP"},
		{Code: "F3", Region: "Central", Level: "HC IV", Ownership: "Government"},
		{Code: "F4", Region: "Northern", Level: "Hospital", Ownership: "Government"},
		{Code: "F5", Region: "", Level: "Hospital", Ownership: "Government"},
	}
	p := NewProcessor(nil)

	byLevel := p.FacilityDistribution(facilities, false)
	require.Len(t, byLevel, 3)
	assert.Equal(t, domain.DistributionRow{Region: "Central", Group: "HC IV", Count: 1}, byLevel[0])
	assert.Equal(t, domain.DistributionRow{Region: "Central", Group: "Hospital", Count: 2}, byLevel[1])
	assert.Equal(t, domain.DistributionRow{Region: "Northern", Group: "Hospital", Count: 1}, byLevel[2])

	byOwnership := p.FacilityDistribution(facilities, true)
	require.Len(t, byOwnership, 3)
	assert.Equal(t, domain.DistributionRow{Region: "Central", Group: "Government", Count: 2}, byOwnership[0])
}

func TestHeatmapExcludesUnmatchedDistricts(t *testing.T) {
	p := NewProcessor(nil)
	shapes := map[string]domain.GeoShape{
		"KAMPALA": {Name: "Kampala"},
		"GULU":    {Name: "Gulu"},
	}

	rows := p.Heatmap(testRecords(), testPopulation(), shapes)

	require.Len(t, rows, 2)
	districts := []string{rows[0].District, rows[1].District}
	assert.ElementsMatch(t, []string{"Gulu", "Kampala"}, districts)
	for _, r := range rows {
		assert.NotNil(t, r.Rate)
		assert.Contains(t, shapes, r.ShapeKey)
	}
}

func TestNationalSummary(t *testing.T) {
	p := NewProcessor(nil)
	summary := p.NationalSummary(2024, testRecords(), testPopulation())

	assert.Equal(t, 2024, summary.Year)
	assert.Equal(t, int64(1000), summary.TotalProcedures)
	assert.Equal(t, 4, summary.ReportingFacilities)
	require.NotNil(t, summary.Rate)
	assert.InDelta(t, 1000.0/3_500_000*domain.RatePer, *summary.Rate, 1e-9)
}

func TestRegionalSummary(t *testing.T) {
	p := NewProcessor(nil)
	summary := p.RegionalSummary(2024, testRecords(), testPopulation(), "Northern")

	assert.Equal(t, int64(250), summary.TotalProcedures)
	assert.Equal(t, 2, summary.ReportingFacilities)
	require.NotNil(t, summary.Rate)
	assert.InDelta(t, 250.0/500_000*domain.RatePer, *summary.Rate, 1e-9)
}

func TestNationalSummaryNoPopulation(t *testing.T) {
	p := NewProcessor(nil)
	summary := p.NationalSummary(2024, testRecords(), NewPopulationIndex(nil))
	assert.Nil(t, summary.Rate)
}

func TestCheckJoin(t *testing.T) {
	records := testRecords()

	assert.NoError(t, CheckJoin(records, testPopulation()))
	assert.NoError(t, CheckJoin(nil, testPopulation()))
	assert.NoError(t, CheckJoin(records, NewPopulationIndex(nil)))

	disjoint := NewPopulationIndex([]domain.PopulationEntry{
		{District: "Nairobi", Population: 100},
	})
	err := CheckJoin(records, disjoint)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeJoin))
}
