package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// offersRepository defines offer storage operations required by the engine.
type offersRepository interface {
	CreateBatch(ctx context.Context, orderID uuid.UUID, courierIDs []uuid.UUID) error
	Get(ctx context.Context, orderID, courierID uuid.UUID) (*domain.DeliveryOffer, error)
	Reject(ctx context.Context, orderID, courierID uuid.UUID) (bool, error)
	CancelPendingByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
	dispatchtx.Runner
}

// ordersRepository defines the order storage operations required by the engine.
type ordersRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ReadyUnassigned(ctx context.Context) ([]domain.ReadyOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, reason string) (bool, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error)
}

// courierRegistry exposes courier positions and availability.
type courierRegistry interface {
	Latest(ctx context.Context, courierID uuid.UUID) (*domain.CourierPosition, error)
	AvailableSnapshot(ctx context.Context) ([]domain.CourierPosition, error)
	SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) error
}

// pushNotifier delivers push notifications. Implementations must not block
// the dispatch flow on delivery failures.
type pushNotifier interface {
	Push(ctx context.Context, recipient uuid.UUID, audience domain.Audience, title, body string, data map[string]string) error
}

// trackingPublisher is poked when an order's delivery state changes so that
// live subscribers receive a fresh path.
type trackingPublisher interface {
	OrderProgressed(ctx context.Context, orderID uuid.UUID)
}
