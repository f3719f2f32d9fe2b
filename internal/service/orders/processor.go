package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/logx"
)

// Processor reacts to order lifecycle events from the orders service:
// READY orders get offers fanned out, cancelled orders get theirs withdrawn.
type Processor struct {
	dispatch DispatchPort
	log      logx.Logger
	factory  *actionFactory
}

// NewProcessor creates a new orders.Processor.
func NewProcessor(dispatchSvc DispatchPort, log logx.Logger) *Processor {
	if log == nil {
		log = logx.Nop()
	}
	p := &Processor{dispatch: dispatchSvc, log: log}
	p.factory = newActionFactory(p.onReady, p.onCancelled)
	return p
}

// Handle processes a single orders.Event. Statuses dispatch does not care
// about and malformed order IDs are skipped, not failed, so the consumer
// never wedges on a poison message.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) parseOrderID(e Event) (uuid.UUID, bool) {
	id, err := uuid.Parse(e.OrderID)
	if err != nil {
		p.log.Warn("skipping event with malformed order id",
			logx.String("order_id", e.OrderID),
			logx.String("status", e.Status))
		return uuid.Nil, false
	}
	return id, true
}

func (p *Processor) onReady(ctx context.Context, e Event) error {
	orderID, ok := p.parseOrderID(e)
	if !ok {
		return nil
	}
	dispatched, err := p.dispatch.Dispatch(ctx, orderID)
	switch {
	case errors.Is(err, apperr.ErrConflict):
		// offers already exist, the event was redelivered
		return nil
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrPreconditionFailed):
		// the order moved on before we got here
		p.log.Info("order no longer dispatchable",
			logx.String("order_id", e.OrderID),
			logx.Err(err))
		return nil
	case err != nil:
		return err
	}
	if !dispatched {
		p.log.Info("no couriers in range, order stays ready",
			logx.String("order_id", e.OrderID))
	}
	return nil
}

func (p *Processor) onCancelled(ctx context.Context, e Event) error {
	orderID, ok := p.parseOrderID(e)
	if !ok {
		return nil
	}
	return p.dispatch.CancelOffers(ctx, orderID)
}
