// Package dataprocessing turns loaded raw tables into the summary tables the
// dashboard displays: annual volumes and rates per region or district,
// procedure category totals, the facility distribution matrix, district
// heatmap rows and the national trend series.
//
// Rates are procedures per 10,000 population and are computed only when a
// population figure is known and positive; rows without one carry counts
// only. Output is sorted by grouping key so table rendering and exports are
// deterministic.
package dataprocessing
