package domain

import (
	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

// List of possible order statuses.
//
//	PENDING → READY → ACCEPTED → OUT_FOR_DELIVERY → DELIVERED
//	                                              ↘ DELIVERY_FAILED
//	PENDING/READY/ACCEPTED → CANCELLED
const (
	StatusPending        OrderStatus = "PENDING"
	StatusReady          OrderStatus = "READY"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusDeliveryFailed OrderStatus = "DELIVERY_FAILED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var allowedOrderStatuses = [...]OrderStatus{
	StatusPending, StatusReady, StatusAccepted, StatusOutForDelivery,
	StatusDelivered, StatusDeliveryFailed, StatusCancelled,
}

// Valid checks if the OrderStatus is valid.
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusDeliveryFailed || s == StatusCancelled
}

// OrderEvent is an input to the order state machine.
type OrderEvent string

// List of legal order events.
const (
	EventMarkReady       OrderEvent = "mark_ready"
	EventCourierAccepted OrderEvent = "courier_accepted"
	EventPickedUp        OrderEvent = "picked_up"
	EventDelivered       OrderEvent = "delivered"
	EventDeliveryFailed  OrderEvent = "delivery_failed"
	EventCancelled       OrderEvent = "cancelled"
)

// Audience identifies who a domain event notification is addressed to.
type Audience string

// List of notification audiences.
const (
	NotifyCustomer   Audience = "CUSTOMER"
	NotifyRestaurant Audience = "RESTAURANT"
	NotifyCourier    Audience = "COURIER"
)

// DomainEvent is a side effect requested by a successful transition.
// The state machine performs no I/O itself; callers dispatch these to the
// notifier and the tracking hub.
type DomainEvent struct {
	Notify  Audience
	Title   string
	Message string
}

// Transition is one state machine input: an event plus its payload
// (Reason is set only for EventDeliveryFailed).
type Transition struct {
	Event  OrderEvent
	Reason string
}

// Advance applies ev to the order and returns the updated order together with
// the domain events the transition produced. Any event not legal for the
// current status fails with apperr.IllegalTransitionError and the order is
// returned unchanged.
func Advance(o Order, ev Transition) (Order, []DomainEvent, error) {
	illegal := func() (Order, []DomainEvent, error) {
		return o, nil, apperr.IllegalTransitionError{Status: string(o.Status), Event: string(ev.Event)}
	}

	switch ev.Event {
	case EventMarkReady:
		if o.Status != StatusPending {
			return illegal()
		}
		if !o.PaymentConfirmed && !o.CashOnDelivery {
			return o, nil, apperr.ErrPreconditionFailed
		}
		o.Status = StatusReady
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Order Update", Message: "Your order is ready and waiting for a courier"},
		}, nil

	case EventCourierAccepted:
		if o.Status != StatusReady {
			return illegal()
		}
		if !o.Assigned() {
			return o, nil, apperr.ErrPreconditionFailed
		}
		o.Status = StatusAccepted
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Courier Assigned", Message: "A courier has been assigned to your order"},
			{Notify: NotifyRestaurant, Title: "Courier Assigned", Message: "A courier has been assigned to order #" + shortID(o.ID)},
		}, nil

	case EventPickedUp:
		if o.Status != StatusAccepted {
			return illegal()
		}
		o.Status = StatusOutForDelivery
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Delivery Update", Message: "Your order has been picked up and is on the way"},
		}, nil

	case EventDelivered:
		if o.Status != StatusOutForDelivery {
			return illegal()
		}
		o.Status = StatusDelivered
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Delivery Update", Message: "Your order has been delivered"},
		}, nil

	case EventDeliveryFailed:
		if o.Status != StatusOutForDelivery {
			return illegal()
		}
		o.Status = StatusDeliveryFailed
		o.FailureReason = ev.Reason
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Delivery Update", Message: "Delivery failed: " + ev.Reason},
		}, nil

	case EventCancelled:
		if o.Status != StatusPending && o.Status != StatusReady && o.Status != StatusAccepted {
			return illegal()
		}
		o.Status = StatusCancelled
		return o, []DomainEvent{
			{Notify: NotifyCustomer, Title: "Order Update", Message: "Your order has been cancelled"},
		}, nil

	default:
		return illegal()
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
