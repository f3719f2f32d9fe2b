package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
)

// OrderRepo represents order storage as seen by dispatch.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, customer_id, restaurant_id, address_id, courier_id, status,
       total_amount, payment_confirmed, cash_on_delivery, failure_reason,
       created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.RestaurantID, &o.AddressID, &o.CourierID,
		&o.Status, &o.TotalAmount, &o.PaymentConfirmed, &o.CashOnDelivery,
		&o.FailureReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Get - returns an order by ID, nil if it does not exist.
func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// InFlightByCourier returns the courier's current ACCEPTED or
// OUT_FOR_DELIVERY order, nil if the courier has none.
func (r *OrderRepo) InFlightByCourier(ctx context.Context, courierID uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+orderColumns+` FROM orders
        WHERE courier_id = $1 AND status IN ($2, $3)
        ORDER BY updated_at DESC
        LIMIT 1
    `, courierID, domain.StatusAccepted, domain.StatusOutForDelivery)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("in-flight order for courier %s: %w", courierID, err)
	}
	return o, nil
}

// ReadyUnassigned returns READY orders with no courier, joined with their
// restaurant and destination address.
func (r *OrderRepo) ReadyUnassigned(ctx context.Context) ([]domain.ReadyOrder, error) {
	rows, err := r.db.Query(ctx, `
        SELECT o.id, o.customer_id, o.restaurant_id, o.address_id, o.status,
               o.total_amount, o.created_at,
               r.id, r.owner_id, r.name, r.address, r.lat, r.lng,
               a.id, a.line1, a.lat, a.lng
        FROM orders o
        JOIN restaurants r ON r.id = o.restaurant_id
        JOIN addresses a  ON a.id = o.address_id
        WHERE o.status = $1 AND o.courier_id IS NULL
    `, domain.StatusReady)
	if err != nil {
		return nil, fmt.Errorf("ready unassigned orders: %w", err)
	}
	defer rows.Close()

	var out []domain.ReadyOrder
	for rows.Next() {
		var ro domain.ReadyOrder
		if err := rows.Scan(
			&ro.Order.ID, &ro.Order.CustomerID, &ro.Order.RestaurantID, &ro.Order.AddressID,
			&ro.Order.Status, &ro.Order.TotalAmount, &ro.Order.CreatedAt,
			&ro.Restaurant.ID, &ro.Restaurant.OwnerID, &ro.Restaurant.Name,
			&ro.Restaurant.Address, &ro.Restaurant.Lat, &ro.Restaurant.Lng,
			&ro.Address.ID, &ro.Address.Line1, &ro.Address.Lat, &ro.Address.Lng,
		); err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the order status (and failure reason, if any).
// Returns true if a row was updated.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, reason string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders SET status = $2, failure_reason = $3, updated_at = now()
        WHERE id = $1
    `, id, status, reason)
	if err != nil {
		return false, fmt.Errorf("update order %s status: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// GetRestaurant - returns a restaurant by ID, nil if it does not exist.
func (r *OrderRepo) GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	err := r.db.QueryRow(ctx, `
        SELECT id, owner_id, name, address, lat, lng FROM restaurants WHERE id = $1
    `, id).Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.Lat, &rest.Lng)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return &rest, nil
}

// GetAddress - returns a delivery address by ID, nil if it does not exist.
func (r *OrderRepo) GetAddress(ctx context.Context, id uuid.UUID) (*domain.Address, error) {
	var a domain.Address
	err := r.db.QueryRow(ctx, `
        SELECT id, line1, lat, lng FROM addresses WHERE id = $1
    `, id).Scan(&a.ID, &a.Line1, &a.Lat, &a.Lng)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address %s: %w", id, err)
	}
	return &a, nil
}
