package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
)

// PositionRepo represents courier position storage. One row per courier.
type PositionRepo struct{ db *pgxpool.Pool }

// NewPositionRepo creates a new PositionRepo.
func NewPositionRepo(db *pgxpool.Pool) *PositionRepo { return &PositionRepo{db: db} }

// Upsert inserts a new position row with available=true, or overwrites
// lat/lng/updated_at of an existing one. Availability is left unchanged
// on update.
func (r *PositionRepo) Upsert(ctx context.Context, courierID uuid.UUID, lat, lng float64) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO courier_positions (courier_id, lat, lng, available, updated_at)
        VALUES ($1, $2, $3, true, now())
        ON CONFLICT (courier_id) DO UPDATE
        SET lat = EXCLUDED.lat, lng = EXCLUDED.lng, updated_at = now()
    `, courierID, lat, lng)
	if err != nil {
		return fmt.Errorf("upsert position %s: %w", courierID, err)
	}
	return nil
}

// Get - returns the last-known position of a courier, nil if never reported.
func (r *PositionRepo) Get(ctx context.Context, courierID uuid.UUID) (*domain.CourierPosition, error) {
	var p domain.CourierPosition
	err := r.db.QueryRow(ctx, `
        SELECT courier_id, lat, lng, available, updated_at
        FROM courier_positions WHERE courier_id = $1
    `, courierID).Scan(&p.CourierID, &p.Lat, &p.Lng, &p.Available, &p.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get position %s: %w", courierID, err)
	}
	return &p, nil
}

// AvailableSnapshot returns a point-in-time read of all available couriers.
func (r *PositionRepo) AvailableSnapshot(ctx context.Context) ([]domain.CourierPosition, error) {
	rows, err := r.db.Query(ctx, `
        SELECT courier_id, lat, lng, available, updated_at
        FROM courier_positions WHERE available = true
    `)
	if err != nil {
		return nil, fmt.Errorf("available snapshot: %w", err)
	}
	defer rows.Close()

	var out []domain.CourierPosition
	for rows.Next() {
		var p domain.CourierPosition
		if err := rows.Scan(&p.CourierID, &p.Lat, &p.Lng, &p.Available, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetAvailability flips the availability flag, returning true if a row was updated.
func (r *PositionRepo) SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE courier_positions SET available = $2, updated_at = now()
        WHERE courier_id = $1
    `, courierID, available)
	if err != nil {
		return false, fmt.Errorf("set availability %s: %w", courierID, err)
	}
	return ct.RowsAffected() > 0, nil
}
