package domain

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus represents the status of a delivery offer.
type OfferStatus string

// List of possible offer statuses. Accepted, rejected and cancelled are
// terminal and are never reopened.
const (
	OfferPending   OfferStatus = "PENDING"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferRejected  OfferStatus = "REJECTED"
	OfferCancelled OfferStatus = "CANCELLED"
)

var allowedOfferStatuses = [...]OfferStatus{
	OfferPending, OfferAccepted, OfferRejected, OfferCancelled,
}

// Valid checks if the OfferStatus is valid.
func (s OfferStatus) Valid() bool {
	for _, v := range allowedOfferStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OfferStatus) Terminal() bool {
	return s == OfferAccepted || s == OfferRejected || s == OfferCancelled
}

// DeliveryOffer is a proposal from dispatch to one courier for one order,
// independently acceptable or rejectable. Keyed by (OrderID, CourierID).
// Invariant: at most one offer per order is ever ACCEPTED.
type DeliveryOffer struct {
	OrderID   uuid.UUID
	CourierID uuid.UUID
	Status    OfferStatus
	CreatedAt time.Time
}
