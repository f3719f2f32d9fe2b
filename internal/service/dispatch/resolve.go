package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

// Decision is a courier's answer to a delivery offer.
type Decision string

// List of offer decisions.
const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// errRaceLost never leaves the package: losing the acceptance race is an
// outcome, not an error, so Resolve translates it to (false, nil).
var errRaceLost = errors.New("acceptance race lost")

// Resolve applies the courier's decision to their offer.
//
// For ACCEPT it runs the single-winner commit: the offer flips to ACCEPTED,
// every competing PENDING offer is cancelled and the order is assigned, all
// in one transaction. Exactly one courier ever gets true; the rest get
// (false, nil). For REJECT it returns whether the offer was still PENDING.
//
// Deciding on an offer that was never extended to this courier fails with
// apperr.ErrNotFound for both decisions; true no-ops are reserved for offers
// that exist but already left the PENDING state.
func (s *Service) Resolve(ctx context.Context, courierID, orderID uuid.UUID, decision Decision) (bool, error) {
	switch decision {
	case DecisionReject:
		return s.reject(ctx, courierID, orderID)
	case DecisionAccept:
		return s.accept(ctx, courierID, orderID)
	default:
		return false, apperr.ErrInvalid
	}
}

func (s *Service) reject(ctx context.Context, courierID, orderID uuid.UUID) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	offer, err := s.offers.Get(ctx, orderID, courierID)
	if err != nil {
		return false, err
	}
	if offer == nil {
		return false, apperr.ErrNotFound
	}
	return s.offers.Reject(ctx, orderID, courierID)
}

func (s *Service) accept(ctx context.Context, courierID, orderID uuid.UUID) (bool, error) {
	tctx, cancel := s.withTimeout(ctx)
	defer cancel()

	offer, err := s.offers.Get(tctx, orderID, courierID)
	if err != nil {
		return false, err
	}
	if offer == nil {
		return false, apperr.ErrNotFound
	}

	var (
		assigned domain.Order
		events   []domain.DomainEvent
	)
	err = s.offers.WithTx(tctx, func(tx dispatchtx.Repository) error {
		won, err := tx.AcceptOffer(tctx, orderID, courierID)
		if err != nil {
			return err
		}
		if !won {
			return errRaceLost
		}
		if _, err := tx.CancelOtherPending(tctx, orderID, courierID); err != nil {
			return err
		}

		o, err := tx.GetOrderForUpdate(tctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		o.CourierID = &courierID

		next, evs, err := domain.Advance(*o, domain.Transition{Event: domain.EventCourierAccepted})
		if err != nil {
			return err
		}
		if err := tx.AssignOrder(tctx, orderID, courierID, next.Status); err != nil {
			return err
		}
		assigned, events = next, evs
		return nil
	})
	if errors.Is(err, errRaceLost) {
		s.acceptsLost.Inc()
		s.log.Info("acceptance race lost",
			logx.String("order_id", orderID.String()),
			logx.String("courier_id", courierID.String()))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.acceptsWon.Inc()

	// post-commit side effects, all best-effort
	if err := s.registry.SetAvailability(ctx, courierID, false); err != nil {
		s.log.Warn("failed to mark courier busy",
			logx.String("courier_id", courierID.String()),
			logx.Err(err))
	}
	s.dispatchEvents(ctx, assigned, events)
	if s.tracker != nil {
		s.tracker.OrderProgressed(ctx, orderID)
	}

	s.log.Info("order assigned",
		logx.String("order_id", orderID.String()),
		logx.String("courier_id", courierID.String()))
	return true, nil
}

var statusEvents = map[string]domain.OrderEvent{
	"PICKED_UP": domain.EventPickedUp,
	"DELIVERED": domain.EventDelivered,
	"FAILED":    domain.EventDeliveryFailed,
}

// UpdateDeliveryStatus advances the courier's assigned order through the
// delivery leg of the lifecycle. Only the assigned courier may report;
// anyone else sees not-found.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, courierID, orderID uuid.UUID, status, reason string) (*domain.Order, error) {
	event, ok := statusEvents[status]
	if !ok {
		return nil, apperr.ErrInvalid
	}

	tctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Get(tctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || !o.Assigned() || *o.CourierID != courierID {
		return nil, apperr.ErrNotFound
	}

	next, events, err := domain.Advance(*o, domain.Transition{Event: event, Reason: reason})
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.UpdateStatus(tctx, orderID, next.Status, next.FailureReason); err != nil {
		return nil, err
	}

	if next.Status.Terminal() {
		if err := s.registry.SetAvailability(ctx, courierID, true); err != nil {
			s.log.Warn("failed to release courier",
				logx.String("courier_id", courierID.String()),
				logx.Err(err))
		}
	}
	s.dispatchEvents(ctx, next, events)
	if s.tracker != nil {
		s.tracker.OrderProgressed(ctx, orderID)
	}

	s.log.Info("delivery status updated",
		logx.String("order_id", orderID.String()),
		logx.String("status", string(next.Status)))
	return &next, nil
}
