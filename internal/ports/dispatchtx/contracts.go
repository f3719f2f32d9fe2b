package dispatchtx

import (
	"context"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
)

// Repository is the transactional view used inside the acceptance critical
// section. All calls run on the same transaction, so the conditional accept
// and the order assignment commit or roll back together.
type Repository interface {
	// AcceptOffer sets the (orderID, courierID) offer to ACCEPTED only if it
	// is currently PENDING and no other offer for orderID is already
	// ACCEPTED. Returns false when the race is lost.
	AcceptOffer(ctx context.Context, orderID, courierID uuid.UUID) (bool, error)
	// CancelOtherPending cancels every other PENDING offer for the order.
	CancelOtherPending(ctx context.Context, orderID, courierID uuid.UUID) (int64, error)
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	AssignOrder(ctx context.Context, orderID, courierID uuid.UUID, status domain.OrderStatus) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
