package courier

import (
	"context"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
)

// positionRepository defines storage operations required by the business layer.
type positionRepository interface {
	Upsert(ctx context.Context, courierID uuid.UUID, lat, lng float64) error
	Get(ctx context.Context, courierID uuid.UUID) (*domain.CourierPosition, error)
	AvailableSnapshot(ctx context.Context) ([]domain.CourierPosition, error)
	SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) (bool, error)
}

// movementListener is notified after a courier position is persisted.
type movementListener interface {
	CourierMoved(ctx context.Context, courierID uuid.UUID)
}
