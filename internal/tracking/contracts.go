package tracking

import (
	"context"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
)

// ordersRepository defines the order reads the path builder needs.
type ordersRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	InFlightByCourier(ctx context.Context, courierID uuid.UUID) (*domain.Order, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error)
}

// positionsRepository exposes the courier's last-known position.
type positionsRepository interface {
	Get(ctx context.Context, courierID uuid.UUID) (*domain.CourierPosition, error)
}

// routingProvider computes a route from origin through waypoints to dest.
type routingProvider interface {
	Route(ctx context.Context, origin domain.Point, waypoints []domain.Point, dest domain.Point) (*domain.Route, error)
}
