package domain

// GeoPoint is a single vertex of a polygon ring in WGS84 coordinates.
type GeoPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GeoBounds is the bounding box of a shape.
type GeoBounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// GeoShape is one district or region polygon from the shapefile set,
// keyed by the normalized district/region name. Read-only reference data.
type GeoShape struct {
	Name   string       `json:"name"`
	Bounds GeoBounds    `json:"bounds"`
	Rings  [][]GeoPoint `json:"rings,omitempty"`
}
