// Package geo holds the coordinate model and great-circle math shared by the
// hospital search pipeline.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// EarthRadiusKm is the sphere radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Coordinate is a validated latitude/longitude pair. Immutable once produced.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite and in range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Distance returns the great-circle distance between two coordinates in
// kilometers, computed with the haversine formula.
func Distance(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FormatDistance renders a distance for display, e.g. "500 m" or "1.2 km".
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%d m", int(math.Round(distanceKm*1000)))
	}
	return fmt.Sprintf("%.1f km", distanceKm)
}

// Viewbox is a bounding box around a search origin, used for area-constrained
// free-text queries.
type Viewbox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// ViewboxAround computes the bounding box that contains a circle of the given
// radius around the center.
func ViewboxAround(center Coordinate, radiusKm float64) Viewbox {
	bound := orbgeo.NewBoundAroundPoint(orb.Point{center.Lon, center.Lat}, radiusKm*1000)
	return Viewbox{
		MinLat: bound.Min.Lat(),
		MinLon: bound.Min.Lon(),
		MaxLat: bound.Max.Lat(),
		MaxLon: bound.Max.Lon(),
	}
}
