package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// Service derives live delivery paths and pushes them through the hub.
// It is poked from two directions: courier position updates and order
// state transitions.
type Service struct {
	orders           ordersRepository
	positions        positionsRepository
	routing          routingProvider
	hub              *Hub
	log              logx.Logger
	operationTimeout time.Duration
}

// NewService creates a tracking Service.
func NewService(orders ordersRepository, positions positionsRepository, routing routingProvider, hub *Hub, log logx.Logger, timeout time.Duration) *Service {
	if log == nil {
		log = logx.Nop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		orders:           orders,
		positions:        positions,
		routing:          routing,
		hub:              hub,
		log:              log,
		operationTimeout: timeout,
	}
}

// ComputePath builds the current delivery path for an order: courier
// position, next stop and final destination, plus the provider's polyline
// and ETA. The phase follows the order status: OUT_FOR_DELIVERY means the
// courier is heading to the customer, anything earlier to the restaurant.
func (s *Service) ComputePath(ctx context.Context, orderID uuid.UUID) (*domain.DeliveryPath, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	if !o.Assigned() || o.Status.Terminal() {
		return nil, apperr.ErrPreconditionFailed
	}

	pos, err := s.positions.Get(ctx, *o.CourierID)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, apperr.ErrPreconditionFailed
	}

	rest, err := s.orders.GetRestaurant(ctx, o.RestaurantID)
	if err != nil {
		return nil, err
	}
	addr, err := s.orders.GetAddress(ctx, o.AddressID)
	if err != nil {
		return nil, err
	}
	if rest == nil || !rest.HasCoordinates() || addr == nil || !addr.HasCoordinates() {
		return nil, apperr.ErrPreconditionFailed
	}

	restaurantStop := domain.Stop{Lat: *rest.Lat, Lng: *rest.Lng, Address: rest.Address}
	customerStop := domain.Stop{Lat: *addr.Lat, Lng: *addr.Lng, Address: addr.Line1}

	phase := domain.PhaseToRestaurant
	nextStop := restaurantStop
	var waypoints []domain.Point
	if o.Status == domain.StatusOutForDelivery {
		phase = domain.PhaseToCustomer
		nextStop = customerStop
	} else {
		waypoints = []domain.Point{{Lat: restaurantStop.Lat, Lng: restaurantStop.Lng}}
	}

	route, err := s.routing.Route(ctx, pos.Point(), waypoints,
		domain.Point{Lat: customerStop.Lat, Lng: customerStop.Lng})
	if err != nil {
		return nil, err
	}

	return &domain.DeliveryPath{
		CurrentLocation:  domain.Stop{Lat: pos.Lat, Lng: pos.Lng},
		NextStop:         nextStop,
		FinalDestination: customerStop,
		Polyline:         route.Polyline,
		EstimatedMinutes: route.EstimatedMinutes(),
		Phase:            phase,
	}, nil
}

// StartTracking subscribes a channel to the order's updates and sends the
// current path immediately when one can be computed.
func (s *Service) StartTracking(ctx context.Context, orderID uuid.UUID, subscriberID string, role domain.TrackingRole, ch Channel) error {
	if !role.Valid() {
		return apperr.ErrInvalid
	}
	s.hub.Subscribe(orderID, subscriberID, role, ch)

	path, err := s.ComputePath(ctx, orderID)
	if err != nil {
		// subscriber stays on; the path arrives with the next movement
		s.log.Debug("no initial path",
			logx.String("order_id", orderID.String()),
			logx.Err(err))
		return nil
	}
	if err := ch.Send(*path); err != nil {
		s.hub.Unsubscribe(orderID, subscriberID)
	}
	return nil
}

// StopTracking removes the subscriber and closes its channel.
func (s *Service) StopTracking(orderID uuid.UUID, subscriberID string) {
	s.hub.Unsubscribe(orderID, subscriberID)
}

// CourierMoved recomputes and broadcasts the path of the courier's in-flight
// order, if any. Routing is skipped entirely when nobody is watching.
func (s *Service) CourierMoved(ctx context.Context, courierID uuid.UUID) {
	o, err := s.orders.InFlightByCourier(ctx, courierID)
	if err != nil {
		s.log.Warn("in-flight lookup failed",
			logx.String("courier_id", courierID.String()),
			logx.Err(err))
		return
	}
	if o == nil || s.hub.Subscribers(o.ID) == 0 {
		return
	}
	s.broadcast(ctx, o.ID)
}

// OrderProgressed reacts to an order status change: terminal orders close
// their streams, active ones get a fresh path.
func (s *Service) OrderProgressed(ctx context.Context, orderID uuid.UUID) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		s.log.Warn("order lookup failed",
			logx.String("order_id", orderID.String()),
			logx.Err(err))
		return
	}
	if o == nil {
		return
	}
	if o.Status.Terminal() {
		s.hub.CloseOrder(orderID)
		return
	}
	if s.hub.Subscribers(orderID) == 0 {
		return
	}
	s.broadcast(ctx, orderID)
}

func (s *Service) broadcast(ctx context.Context, orderID uuid.UUID) {
	path, err := s.ComputePath(ctx, orderID)
	if err != nil {
		s.log.Warn("path computation failed",
			logx.String("order_id", orderID.String()),
			logx.Err(err))
		return
	}
	s.hub.Publish(orderID, *path)
}
