package orders

import (
	"context"

	"github.com/google/uuid"
)

// DispatchPort abstracts the subset of dispatch operations the Processor
// needs when handling order events.
type DispatchPort interface {
	Dispatch(ctx context.Context, orderID uuid.UUID) (bool, error)
	CancelOffers(ctx context.Context, orderID uuid.UUID) error
}
