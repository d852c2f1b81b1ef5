package dataload

import (
	"log/slog"
	"strings"

	shp "github.com/jonas-p/go-shp"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

// nameFieldCandidates are DBF attribute names known to carry the district or
// region label across the shapefile vintages in use.
var nameFieldCandidates = []string{"district", "dhsregna", "regname", "region", "name"}

// LoadShapefile reads district/region polygons and keys them by the
// normalized name attribute. Shapes without a usable name attribute are
// skipped; a missing file or missing name field is a LoadError.
func LoadShapefile(path string, logger *slog.Logger) (map[string]domain.GeoShape, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open shapefile", err).
			WithContext("path", path)
	}
	defer r.Close()

	nameField := -1
	for i, field := range r.Fields() {
		fieldName := strings.ToLower(field.String())
		for _, candidate := range nameFieldCandidates {
			if strings.Contains(fieldName, candidate) {
				nameField = i
				break
			}
		}
		if nameField >= 0 {
			break
		}
	}
	if nameField < 0 {
		return nil, apperrors.NewLoadError("shapefile has no name attribute", nil).
			WithContext("path", path)
	}

	shapes := make(map[string]domain.GeoShape)
	for r.Next() {
		n, s := r.Shape()
		poly, ok := s.(*shp.Polygon)
		if !ok {
			continue
		}

		name := strings.TrimSpace(r.ReadAttribute(n, nameField))
		if name == "" {
			continue
		}

		shapes[NormalizeKey(name)] = domain.GeoShape{
			Name: name,
			Bounds: domain.GeoBounds{
				MinX: poly.Box.MinX,
				MinY: poly.Box.MinY,
				MaxX: poly.Box.MaxX,
				MaxY: poly.Box.MaxY,
			},
			Rings: polygonRings(poly),
		}
	}

	logger.Debug("loaded shapefile",
		slog.String("path", path),
		slog.Int("shapes", len(shapes)))

	return shapes, nil
}

// polygonRings splits a shapefile polygon part index into coordinate rings.
func polygonRings(poly *shp.Polygon) [][]domain.GeoPoint {
	rings := make([][]domain.GeoPoint, 0, len(poly.Parts))
	for i, start := range poly.Parts {
		end := len(poly.Points)
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1])
		}
		ring := make([]domain.GeoPoint, 0, end-int(start))
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, domain.GeoPoint{X: pt.X, Y: pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}
