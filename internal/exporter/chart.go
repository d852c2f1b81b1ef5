package exporter

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

var (
	observedColor = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	forecastColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	barColor      = color.RGBA{R: 70, G: 130, B: 180, A: 255}
)

// chartFormat normalizes a raster format name for the plot canvas.
func chartFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "png":
		return "png", nil
	case "tif", "tiff":
		return "tif", nil
	default:
		return "", apperrors.NewExportError("unsupported chart format", nil).
			WithContext("format", format)
	}
}

// TrendChart renders the observed rate series with its dashed forecast
// extension as a PNG or TIFF raster.
func TrendChart(series domain.Series, format string) ([]byte, error) {
	fmtName, err := chartFormat(format)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Procedures per 10,000 by Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Rate per 10,000"
	p.Add(plotter.NewGrid())

	observed := series.Observed()
	forecast := series.Forecast()

	obsLine, obsPoints, err := linePoints(observed)
	if err != nil {
		return nil, apperrors.NewExportError("failed to build observed line", err)
	}
	obsLine.LineStyle.Width = vg.Points(2)
	obsLine.LineStyle.Color = observedColor
	obsPoints.GlyphStyle.Color = observedColor
	obsPoints.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(obsLine, obsPoints)
	p.Legend.Add("Observed", obsLine)

	if len(forecast) > 0 {
		// Anchor the forecast segment at the last observed point so the
		// two lines connect.
		segment := forecast
		if len(observed) > 0 {
			segment = append(domain.Series{observed[len(observed)-1]}, forecast...)
		}
		fcLine, fcPoints, err := linePoints(segment)
		if err != nil {
			return nil, apperrors.NewExportError("failed to build forecast line", err)
		}
		fcLine.LineStyle.Width = vg.Points(2)
		fcLine.LineStyle.Color = forecastColor
		fcLine.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		fcPoints.GlyphStyle.Color = forecastColor
		fcPoints.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(fcLine, fcPoints)
		p.Legend.Add("Forecast", fcLine)
	}

	return renderChart(p, 12*vg.Inch, 6*vg.Inch, fmtName)
}

// CategoryChart renders the procedures-by-category bar chart.
func CategoryChart(rows []domain.AggregateRow, format string) ([]byte, error) {
	fmtName, err := chartFormat(format)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Surgical Procedures by Category"
	p.Y.Label.Text = "Procedures"

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		values[i] = float64(r.Procedures)
		labels[i] = r.Key
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, apperrors.NewExportError("failed to build bar chart", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	return renderChart(p, 12*vg.Inch, 6*vg.Inch, fmtName)
}

func linePoints(series domain.Series) (*plotter.Line, *plotter.Scatter, error) {
	xys := make(plotter.XYs, len(series))
	for i, pt := range series {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.Value
	}
	return plotter.NewLinePoints(xys)
}

func renderChart(p *plot.Plot, w, h vg.Length, format string) ([]byte, error) {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, apperrors.NewExportError(fmt.Sprintf("failed to create %s canvas", format), err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, apperrors.NewExportError(fmt.Sprintf("failed to encode %s chart", format), err)
	}
	return buf.Bytes(), nil
}
