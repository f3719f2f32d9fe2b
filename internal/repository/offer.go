package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// OfferRepo represents delivery offer storage, keyed by (order_id, courier_id).
type OfferRepo struct{ db *pgxpool.Pool }

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(db *pgxpool.Pool) *OfferRepo { return &OfferRepo{db: db} }

// CreateBatch inserts one PENDING offer per courier for the given order.
// Re-dispatching the same order to the same courier violates the composite
// key and surfaces apperr.ErrConflict.
func (r *OfferRepo) CreateBatch(ctx context.Context, orderID uuid.UUID, courierIDs []uuid.UUID) error {
	batch := &pgx.Batch{}
	for _, courierID := range courierIDs {
		batch.Queue(`
            INSERT INTO delivery_offers (order_id, courier_id, status, created_at)
            VALUES ($1, $2, $3, now())
        `, orderID, courierID, domain.OfferPending)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range courierIDs {
		if _, err := results.Exec(); err != nil {
			if IsDuplicate(err) {
				return apperr.ErrConflict
			}
			return fmt.Errorf("create offers for order %s: %w", orderID, err)
		}
	}
	return nil
}

// Get - returns one offer, nil if it does not exist.
func (r *OfferRepo) Get(ctx context.Context, orderID, courierID uuid.UUID) (*domain.DeliveryOffer, error) {
	var o domain.DeliveryOffer
	err := r.db.QueryRow(ctx, `
        SELECT order_id, courier_id, status, created_at
        FROM delivery_offers WHERE order_id = $1 AND courier_id = $2
    `, orderID, courierID).Scan(&o.OrderID, &o.CourierID, &o.Status, &o.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer (%s,%s): %w", orderID, courierID, err)
	}
	return &o, nil
}

// Reject transitions the courier's offer PENDING→REJECTED. Returns false if
// the offer was not PENDING (no-op).
func (r *OfferRepo) Reject(ctx context.Context, orderID, courierID uuid.UUID) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE delivery_offers SET status = $3
        WHERE order_id = $1 AND courier_id = $2 AND status = $4
    `, orderID, courierID, domain.OfferRejected, domain.OfferPending)
	if err != nil {
		return false, fmt.Errorf("reject offer (%s,%s): %w", orderID, courierID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// CancelPendingByOrder cancels every PENDING offer for the order.
func (r *OfferRepo) CancelPendingByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE delivery_offers SET status = $2
        WHERE order_id = $1 AND status = $3
    `, orderID, domain.OfferCancelled, domain.OfferPending)
	if err != nil {
		return 0, fmt.Errorf("cancel offers for order %s: %w", orderID, err)
	}
	return ct.RowsAffected(), nil
}

// ExpirePending cancels PENDING offers created before the cutoff.
func (r *OfferRepo) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE delivery_offers SET status = $1
        WHERE status = $2 AND created_at < $3
    `, domain.OfferCancelled, domain.OfferPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire pending offers: %w", err)
	}
	return ct.RowsAffected(), nil
}

// WithTx opens a transaction and executes fn within it.
func (r *OfferRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents the transactional repository used during acceptance.
type TxRepo struct {
	tx pgx.Tx
}

// AcceptOffer - the single place requiring true mutual exclusion.
// SELECT FOR UPDATE locks the order's offer rows, so concurrent accepts for
// the same order serialize here; accepts for different orders do not contend.
func (r *TxRepo) AcceptOffer(ctx context.Context, orderID, courierID uuid.UUID) (bool, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT courier_id, status FROM delivery_offers
        WHERE order_id = $1
        FOR UPDATE
    `, orderID)
	if err != nil {
		return false, fmt.Errorf("lock offers for order %s: %w", orderID, err)
	}

	var minePending, winnerExists bool
	for rows.Next() {
		var id uuid.UUID
		var status domain.OfferStatus
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return false, err
		}
		if status == domain.OfferAccepted {
			winnerExists = true
		}
		if id == courierID && status == domain.OfferPending {
			minePending = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	if winnerExists || !minePending {
		return false, nil
	}

	ct, err := r.tx.Exec(ctx, `
        UPDATE delivery_offers SET status = $3
        WHERE order_id = $1 AND courier_id = $2 AND status = $4
    `, orderID, courierID, domain.OfferAccepted, domain.OfferPending)
	if err != nil {
		return false, fmt.Errorf("accept offer (%s,%s): %w", orderID, courierID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// CancelOtherPending cancels every other PENDING offer for the same order.
func (r *TxRepo) CancelOtherPending(ctx context.Context, orderID, courierID uuid.UUID) (int64, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE delivery_offers SET status = $3
        WHERE order_id = $1 AND courier_id <> $2 AND status = $4
    `, orderID, courierID, domain.OfferCancelled, domain.OfferPending)
	if err != nil {
		return 0, fmt.Errorf("cancel other offers for order %s: %w", orderID, err)
	}
	return ct.RowsAffected(), nil
}

// GetOrderForUpdate - loads the order row with a row lock.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	row := r.tx.QueryRow(ctx, `
        SELECT id, customer_id, restaurant_id, address_id, courier_id, status,
               total_amount, payment_confirmed, cash_on_delivery, failure_reason,
               created_at, updated_at
        FROM orders WHERE id = $1
        FOR UPDATE
    `, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s for update: %w", orderID, err)
	}
	return o, nil
}

// AssignOrder commits the winner on the order row.
func (r *TxRepo) AssignOrder(ctx context.Context, orderID, courierID uuid.UUID, status domain.OrderStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders SET courier_id = $2, status = $3, updated_at = now()
        WHERE id = $1
    `, orderID, courierID, status)
	if err != nil {
		return fmt.Errorf("assign order %s: %w", orderID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}
