package handlers

import (
	"context"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/service/courier"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/tracking"
)

type courierUsecase interface {
	UpsertPosition(ctx context.Context, courierID uuid.UUID, lat, lng float64) error
	SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) error
}

// NewCourierUsecase wires a courier Service into a courierUsecase.
func NewCourierUsecase(svc *courier.Service) courierUsecase {
	return svc
}

type dispatchUsecase interface {
	Resolve(ctx context.Context, courierID, orderID uuid.UUID, decision dispatch.Decision) (bool, error)
	AvailableDeliveries(ctx context.Context, courierID uuid.UUID) ([]domain.AvailableDelivery, error)
	UpdateDeliveryStatus(ctx context.Context, courierID, orderID uuid.UUID, status, reason string) (*domain.Order, error)
}

// NewDispatchUsecase wires a dispatch Service into a dispatchUsecase.
func NewDispatchUsecase(svc *dispatch.Service) dispatchUsecase {
	return svc
}

type trackingUsecase interface {
	ComputePath(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryPath, error)
	StartTracking(ctx context.Context, orderID uuid.UUID, subscriberID string, role domain.TrackingRole, ch tracking.Channel) error
	StopTracking(orderID uuid.UUID, subscriberID string)
}

// NewTrackingUsecase wires a tracking Service into a trackingUsecase.
func NewTrackingUsecase(svc *tracking.Service) trackingUsecase {
	return svc
}
