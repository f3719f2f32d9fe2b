package courier

import (
	"context"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

// Service coordinates courier position updates and orchestrates repository calls.
type Service struct {
	repo             positionRepository
	listener         movementListener
	operationTimeout time.Duration
}

// NewService creates and configures a courier Service. The movement listener
// is optional.
func NewService(r positionRepository, listener movementListener, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, listener: listener, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// UpsertPosition stores the courier's latest coordinates and notifies the
// movement listener. First report marks the courier available.
func (s *Service) UpsertPosition(ctx context.Context, courierID uuid.UUID, lat, lng float64) error {
	if !domain.ValidateCoordinates(lat, lng) {
		return apperr.ErrInvalid
	}

	tctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Upsert(tctx, courierID, lat, lng); err != nil {
		return err
	}

	if s.listener != nil {
		s.listener.CourierMoved(ctx, courierID)
	}
	return nil
}

// Latest retrieves the courier's last-known position.
func (s *Service) Latest(ctx context.Context, courierID uuid.UUID) (*domain.CourierPosition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.repo.Get(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// AvailableSnapshot returns every courier currently accepting offers.
func (s *Service) AvailableSnapshot(ctx context.Context) ([]domain.CourierPosition, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.AvailableSnapshot(ctx)
}

// SetAvailability flips whether the courier receives new offers.
func (s *Service) SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.SetAvailability(ctx, courierID, available)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}
