// Package geo provides positions and distance functions over geographic
// coordinates.
package geo

import "math"

// Position is a point given as finite floating-point degrees of latitude
// and longitude.
type Position struct {
	Lat float64
	Lon float64
}

// IsFinite reports whether both components are finite (not NaN, not ±Inf).
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}
