package domain

import (
	"time"

	"github.com/google/uuid"
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// CourierPosition is the last-known position of a courier.
// One row per courier, overwritten on each location update.
type CourierPosition struct {
	CourierID uuid.UUID
	Lat       float64
	Lng       float64
	Available bool
	UpdatedAt time.Time
}

// Point returns the position as a coordinate pair.
func (p CourierPosition) Point() Point {
	return Point{Lat: p.Lat, Lng: p.Lng}
}

// ValidateCoordinates checks that lat/lng are within WGS84 bounds.
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
