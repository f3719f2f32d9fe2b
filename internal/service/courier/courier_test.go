package courier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

type stubPositionRepo struct {
	positions map[uuid.UUID]domain.CourierPosition
	upsertErr error
}

func newStubPositionRepo() *stubPositionRepo {
	return &stubPositionRepo{positions: make(map[uuid.UUID]domain.CourierPosition)}
}

func (s *stubPositionRepo) Upsert(_ context.Context, courierID uuid.UUID, lat, lng float64) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	p, ok := s.positions[courierID]
	if !ok {
		p = domain.CourierPosition{CourierID: courierID, Available: true}
	}
	p.Lat, p.Lng, p.UpdatedAt = lat, lng, time.Now()
	s.positions[courierID] = p
	return nil
}

func (s *stubPositionRepo) Get(_ context.Context, courierID uuid.UUID) (*domain.CourierPosition, error) {
	p, ok := s.positions[courierID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *stubPositionRepo) AvailableSnapshot(_ context.Context) ([]domain.CourierPosition, error) {
	var out []domain.CourierPosition
	for _, p := range s.positions {
		if p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPositionRepo) SetAvailability(_ context.Context, courierID uuid.UUID, available bool) (bool, error) {
	p, ok := s.positions[courierID]
	if !ok {
		return false, nil
	}
	p.Available = available
	s.positions[courierID] = p
	return true, nil
}

type recordingListener struct {
	moved []uuid.UUID
}

func (r *recordingListener) CourierMoved(_ context.Context, courierID uuid.UUID) {
	r.moved = append(r.moved, courierID)
}

func TestUpsertPosition(t *testing.T) {
	repo := newStubPositionRepo()
	listener := &recordingListener{}
	svc := NewService(repo, listener, time.Second)

	courierID := uuid.New()
	err := svc.UpsertPosition(context.Background(), courierID, 40.7128, -74.0060)
	require.NoError(t, err)

	p, err := svc.Latest(context.Background(), courierID)
	require.NoError(t, err)
	require.InDelta(t, 40.7128, p.Lat, 1e-9)
	require.Equal(t, []uuid.UUID{courierID}, listener.moved)
}

func TestUpsertPositionRejectsBadCoordinates(t *testing.T) {
	repo := newStubPositionRepo()
	svc := NewService(repo, nil, time.Second)

	cases := []struct {
		name     string
		lat, lng float64
	}{
		{"lat too high", 91, 0},
		{"lat too low", -91, 0},
		{"lng too high", 0, 181},
		{"lng too low", 0, -181},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.UpsertPosition(context.Background(), uuid.New(), tc.lat, tc.lng)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
	require.Empty(t, repo.positions)
}

func TestLatestNotFound(t *testing.T) {
	svc := NewService(newStubPositionRepo(), nil, time.Second)

	_, err := svc.Latest(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetAvailability(t *testing.T) {
	repo := newStubPositionRepo()
	svc := NewService(repo, nil, time.Second)

	courierID := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), courierID, 1, 1))

	require.NoError(t, svc.SetAvailability(context.Background(), courierID, false))

	snapshot, err := svc.AvailableSnapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snapshot)

	err = svc.SetAvailability(context.Background(), uuid.New(), true)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
