package exporter

import (
	"log/slog"
	"strings"
	"sync"

	"svpulse/pkg/contracts/domain"
)

// Capabilities reports which export formats the running binary can
// actually produce. CSV and Excel are pure Go and always available;
// PDF and the raster chart formats are verified by rendering a tiny
// document at probe time.
type Capabilities struct {
	CSV   bool `json:"csv"`
	Excel bool `json:"xlsx"`
	PDF   bool `json:"pdf"`
	PNG   bool `json:"png"`
	TIFF  bool `json:"tiff"`
}

var (
	probeOnce   sync.Once
	probeResult Capabilities
)

// Probe exercises each encoder once and caches the result for the
// lifetime of the process. Failures are logged and the format is
// reported as unavailable rather than treated as fatal.
func Probe(logger *slog.Logger) Capabilities {
	probeOnce.Do(func() {
		probeResult = runProbe(logger)
	})
	return probeResult
}

func runProbe(logger *slog.Logger) Capabilities {
	caps := Capabilities{CSV: true, Excel: true}

	sample := Table{
		Title:   "probe",
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1", "2"}},
	}
	if _, err := PDFBytes(sample); err != nil {
		logger.Warn("pdf export disabled", "error", err)
	} else {
		caps.PDF = true
	}

	series := domain.Series{
		{Year: 2020, Value: 1, Kind: domain.KindObserved},
		{Year: 2021, Value: 2, Kind: domain.KindObserved},
	}
	if _, err := TrendChart(series, "png"); err != nil {
		logger.Warn("png chart export disabled", "error", err)
	} else {
		caps.PNG = true
	}
	if _, err := TrendChart(series, "tif"); err != nil {
		logger.Warn("tiff chart export disabled", "error", err)
	} else {
		caps.TIFF = true
	}

	return caps
}

// Supports reports whether a format name is available.
func (c Capabilities) Supports(format string) bool {
	switch strings.ToLower(format) {
	case "csv":
		return c.CSV
	case "xlsx":
		return c.Excel
	case "pdf":
		return c.PDF
	case "png":
		return c.PNG
	case "tif", "tiff":
		return c.TIFF
	default:
		return false
	}
}

// Formats lists the available format names in a stable order.
func (c Capabilities) Formats() []string {
	var out []string
	if c.CSV {
		out = append(out, "csv")
	}
	if c.Excel {
		out = append(out, "xlsx")
	}
	if c.PDF {
		out = append(out, "pdf")
	}
	if c.PNG {
		out = append(out, "png")
	}
	if c.TIFF {
		out = append(out, "tiff")
	}
	return out
}

// resetProbeForTesting clears the cached probe result.
func resetProbeForTesting() {
	probeOnce = sync.Once{}
	probeResult = Capabilities{}
}
