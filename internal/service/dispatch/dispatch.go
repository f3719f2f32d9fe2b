package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
)

// Rates are the coefficients of the courier earnings estimate.
type Rates struct {
	Base     float64
	PerKm    float64
	OrderPct float64
}

// Settings tune the dispatch engine.
type Settings struct {
	RadiusKm         float64
	OperationTimeout time.Duration
	OfferTTL         time.Duration
	Earnings         Rates
}

// Deps are the collaborators of the dispatch engine. Log and the counters
// may be nil.
type Deps struct {
	Offers   offersRepository
	Orders   ordersRepository
	Registry courierRegistry
	Notifier pushNotifier
	Tracker  trackingPublisher
	Log      logx.Logger

	OffersCreated prometheus.Counter
	AcceptsWon    prometheus.Counter
	AcceptsLost   prometheus.Counter
}

// Service fans delivery offers out to nearby couriers and resolves their
// accept/reject decisions.
type Service struct {
	offers   offersRepository
	orders   ordersRepository
	registry courierRegistry
	notifier pushNotifier
	tracker  trackingPublisher
	log      logx.Logger

	offersCreated prometheus.Counter
	acceptsWon    prometheus.Counter
	acceptsLost   prometheus.Counter

	radiusKm         float64
	operationTimeout time.Duration
	offerTTL         time.Duration
	rates            Rates

	now func() time.Time
}

// NewService creates and configures a dispatch Service.
func NewService(d Deps, st Settings) *Service {
	if st.RadiusKm <= 0 {
		st.RadiusKm = geo.DefaultRadiusKm
	}
	if st.OperationTimeout <= 0 {
		st.OperationTimeout = 3 * time.Second
	}
	if st.OfferTTL <= 0 {
		st.OfferTTL = 10 * time.Minute
	}
	if d.Log == nil {
		d.Log = logx.Nop()
	}
	if d.OffersCreated == nil {
		d.OffersCreated = metrics.NewOffersCreatedTotal()
	}
	if d.AcceptsWon == nil {
		d.AcceptsWon = metrics.NewAcceptsWonTotal()
	}
	if d.AcceptsLost == nil {
		d.AcceptsLost = metrics.NewAcceptsLostTotal()
	}
	return &Service{
		offers:           d.Offers,
		orders:           d.Orders,
		registry:         d.Registry,
		notifier:         d.Notifier,
		tracker:          d.Tracker,
		log:              d.Log,
		offersCreated:    d.OffersCreated,
		acceptsWon:       d.AcceptsWon,
		acceptsLost:      d.AcceptsLost,
		radiusKm:         st.RadiusKm,
		operationTimeout: st.OperationTimeout,
		offerTTL:         st.OfferTTL,
		rates:            st.Earnings,
		now:              time.Now,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Dispatch fans one PENDING offer per nearby available courier out for a
// READY, unassigned order. Returns false when no courier is in range; the
// order stays READY and can be re-dispatched later.
func (s *Service) Dispatch(ctx context.Context, orderID uuid.UUID) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, apperr.ErrNotFound
	}
	if o.Status != domain.StatusReady || o.Assigned() {
		return false, apperr.ErrPreconditionFailed
	}

	rest, err := s.orders.GetRestaurant(ctx, o.RestaurantID)
	if err != nil {
		return false, err
	}
	if rest == nil || !rest.HasCoordinates() {
		return false, apperr.ErrPreconditionFailed
	}
	origin := domain.Point{Lat: *rest.Lat, Lng: *rest.Lng}

	snapshot, err := s.registry.AvailableSnapshot(ctx)
	if err != nil {
		return false, err
	}
	nearby := geo.WithinRadius(origin, snapshot, s.radiusKm)
	if len(nearby) == 0 {
		s.log.Info("no couriers in range",
			logx.String("order_id", orderID.String()),
			logx.Float64("radius_km", s.radiusKm))
		return false, nil
	}

	courierIDs := make([]uuid.UUID, 0, len(nearby))
	for _, c := range nearby {
		courierIDs = append(courierIDs, c.CourierID)
	}
	if err := s.offers.CreateBatch(ctx, orderID, courierIDs); err != nil {
		return false, err
	}
	for range courierIDs {
		s.offersCreated.Inc()
	}

	data := map[string]string{"type": "DELIVERY_REQUEST", "orderId": orderID.String()}
	for _, courierID := range courierIDs {
		s.notify(ctx, courierID, domain.NotifyCourier,
			"New Delivery Request", "A new delivery is available near you", data)
	}

	s.log.Info("offers dispatched",
		logx.String("order_id", orderID.String()),
		logx.Int("couriers", len(courierIDs)))
	return true, nil
}

// AvailableDeliveries lists READY unassigned orders within the courier's
// radius, sorted as returned by storage, with distance and earnings estimates.
func (s *Service) AvailableDeliveries(ctx context.Context, courierID uuid.UUID) ([]domain.AvailableDelivery, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pos, err := s.registry.Latest(ctx, courierID)
	if err != nil {
		return nil, err
	}

	ready, err := s.orders.ReadyUnassigned(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AvailableDelivery, 0, len(ready))
	for _, ro := range ready {
		if !ro.Restaurant.HasCoordinates() {
			continue
		}
		dist := geo.Distance(pos.Point(), domain.Point{Lat: *ro.Restaurant.Lat, Lng: *ro.Restaurant.Lng})
		if dist > s.radiusKm {
			continue
		}
		out = append(out, domain.AvailableDelivery{
			OrderID:           ro.Order.ID,
			RestaurantName:    ro.Restaurant.Name,
			RestaurantAddress: ro.Restaurant.Address,
			CustomerAddress:   ro.Address.Line1,
			OrderAmount:       ro.Order.TotalAmount,
			DistanceKm:        dist,
			EstimatedEarning:  s.estimateEarning(dist, ro.Order.TotalAmount),
			CreatedAt:         ro.Order.CreatedAt,
		})
	}
	return out, nil
}

// estimateEarning follows the flat-plus-variable formula:
// base + distance * per-km rate + order amount * percentage.
func (s *Service) estimateEarning(distanceKm, orderAmount float64) float64 {
	return s.rates.Base + distanceKm*s.rates.PerKm + orderAmount*s.rates.OrderPct
}

// ExpireOffers cancels PENDING offers older than the configured TTL.
func (s *Service) ExpireOffers(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.offers.ExpirePending(ctx, s.now().Add(-s.offerTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired stale offers", logx.Int64("count", n))
	}
	return n, nil
}

// CancelOffers withdraws every outstanding offer for an order, used when the
// order is cancelled before any courier accepts.
func (s *Service) CancelOffers(ctx context.Context, orderID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.offers.CancelPendingByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("offers withdrawn",
			logx.String("order_id", orderID.String()),
			logx.Int64("count", n))
	}
	return nil
}

// notify is best-effort: push failures are logged, never propagated.
func (s *Service) notify(ctx context.Context, recipient uuid.UUID, aud domain.Audience, title, body string, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Push(ctx, recipient, aud, title, body, data); err != nil {
		s.log.Warn("push failed",
			logx.String("recipient", recipient.String()),
			logx.String("audience", string(aud)),
			logx.Err(err))
	}
}

// dispatchEvents resolves each domain event to its recipient and pushes it.
// The restaurant owner is looked up lazily, only when a restaurant-facing
// event exists.
func (s *Service) dispatchEvents(ctx context.Context, o domain.Order, events []domain.DomainEvent) {
	var ownerID *uuid.UUID
	for _, ev := range events {
		var recipient uuid.UUID
		switch ev.Notify {
		case domain.NotifyCustomer:
			recipient = o.CustomerID
		case domain.NotifyCourier:
			if !o.Assigned() {
				continue
			}
			recipient = *o.CourierID
		case domain.NotifyRestaurant:
			if ownerID == nil {
				rest, err := s.orders.GetRestaurant(ctx, o.RestaurantID)
				if err != nil || rest == nil {
					s.log.Warn("restaurant lookup for notification failed",
						logx.String("order_id", o.ID.String()),
						logx.Err(err))
					continue
				}
				ownerID = &rest.OwnerID
			}
			recipient = *ownerID
		default:
			continue
		}
		s.notify(ctx, recipient, ev.Notify, ev.Title, ev.Message, nil)
	}
}
