// Package geo holds great-circle distance and coordinate helpers.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// EarthRadiusKm is the mean radius of Earth used for haversine distance.
const EarthRadiusKm = 6371.0

// CellPrecision is the geohash length used by Cell, roughly 1.2 km by 0.6 km.
const CellPrecision = 6

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p is finite and inside [-90,90] x [-180,180].
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the great-circle distance in kilometres between two
// points given in degrees. The haversine term is clamped to [0, 1] so
// rounding at identical or antipodal points cannot produce NaN.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	a = math.Max(0, math.Min(1, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance is DistanceKm over Points.
func Distance(p, q Point) float64 {
	return DistanceKm(p.Lat, p.Lng, q.Lat, q.Lng)
}

// ParseCoordinates parses text coordinates as stored on property records.
// Empty, non-numeric, non-finite or out-of-range input yields false.
func ParseCoordinates(lat, lng string) (Point, bool) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return Point{}, false
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Point{}, false
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Point{}, false
	}
	p := Point{Lat: la, Lng: lo}
	if !p.Valid() {
		return Point{}, false
	}
	return p, true
}

// Cell returns the geohash area containing p. Search analytics bucket the
// searched centres by it.
func Cell(p Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, CellPrecision)
}

// Cells returns the distinct Cell of each valid point, in first-seen order.
func Cells(points []Point) []string {
	seen := make(map[string]struct{}, len(points))
	out := make([]string, 0, len(points))
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		c := Cell(p)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
