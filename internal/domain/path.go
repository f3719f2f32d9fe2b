package domain

// DeliveryPhase - which leg of the trip the courier is currently on.
type DeliveryPhase string

// List of delivery phases.
const (
	PhaseToRestaurant DeliveryPhase = "TO_RESTAURANT"
	PhaseToCustomer   DeliveryPhase = "TO_CUSTOMER"
)

// TrackingRole identifies the kind of subscriber on a tracking stream.
type TrackingRole string

// List of tracking roles.
const (
	RoleCourier    TrackingRole = "COURIER"
	RoleCustomer   TrackingRole = "CUSTOMER"
	RoleRestaurant TrackingRole = "RESTAURANT"
)

var allowedTrackingRoles = [...]TrackingRole{RoleCourier, RoleCustomer, RoleRestaurant}

// Valid checks if the TrackingRole is valid.
func (r TrackingRole) Valid() bool {
	for _, v := range allowedTrackingRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Stop is a named point on the delivery path.
type Stop struct {
	Lat     float64 `json:"latitude"`
	Lng     float64 `json:"longitude"`
	Address string  `json:"address"`
}

// Route is the routing provider's answer for one origin-to-destination trip
// with optional intermediate waypoints. LegSeconds holds the travel time of
// each leg in order.
type Route struct {
	Polyline   string
	LegSeconds []int
}

// EstimatedMinutes sums the leg durations, rounded down to whole minutes.
func (r Route) EstimatedMinutes() int {
	var total int
	for _, s := range r.LegSeconds {
		total += s
	}
	return total / 60
}

// DeliveryPath is the live route payload pushed to tracking subscribers.
// Derived on demand from the courier position, the order and the routing
// provider; never cached beyond a single broadcast.
type DeliveryPath struct {
	CurrentLocation  Stop          `json:"current_location"`
	NextStop         Stop          `json:"next_stop"`
	FinalDestination Stop          `json:"final_destination"`
	Polyline         string        `json:"polyline"`
	EstimatedMinutes int           `json:"estimated_time"`
	Phase            DeliveryPhase `json:"delivery_phase"`
}
