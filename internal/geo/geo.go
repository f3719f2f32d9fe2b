package geo

import (
	"math"

	"service-dispatch/internal/domain"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// DefaultRadiusKm is the dispatch search radius used when none is configured.
const DefaultRadiusKm = 5.0

// Distance returns the great-circle distance in kilometers between two
// WGS84 points using the Haversine formula.
func Distance(a, b domain.Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	latA := radians(a.Lat)
	latB := radians(b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(latA)*math.Cos(latB)*math.Pow(math.Sin(dLng/2), 2)

	return earthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// WithinRadius filters candidates to those at most radiusKm (inclusive) from
// origin. Pure, O(n); the candidate set is bounded to available couriers.
func WithinRadius(origin domain.Point, candidates []domain.CourierPosition, radiusKm float64) []domain.CourierPosition {
	out := make([]domain.CourierPosition, 0, len(candidates))
	for _, c := range candidates {
		if Distance(origin, c.Point()) <= radiusKm {
			out = append(out, c)
		}
	}
	return out
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
