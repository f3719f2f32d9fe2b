package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a customer order as seen by dispatch. Dispatch only ever
// mutates CourierID and Status; financial fields are owned elsewhere.
type Order struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	RestaurantID     uuid.UUID
	AddressID        uuid.UUID
	CourierID        *uuid.UUID // nil until a courier accepts
	Status           OrderStatus
	TotalAmount      float64
	PaymentConfirmed bool
	CashOnDelivery   bool
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Assigned reports whether a courier has been committed to this order.
func (o Order) Assigned() bool {
	return o.CourierID != nil
}

// Restaurant carries the subset of restaurant data dispatch needs:
// identity for notifications and coordinates for candidate filtering.
type Restaurant struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Address string
	Lat     *float64
	Lng     *float64
}

// HasCoordinates reports whether the restaurant location is known.
func (r Restaurant) HasCoordinates() bool {
	return r.Lat != nil && r.Lng != nil
}

// Address is a delivery destination.
type Address struct {
	ID    uuid.UUID
	Line1 string
	Lat   *float64
	Lng   *float64
}

// HasCoordinates reports whether the address location is known.
func (a Address) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}

// ReadyOrder is a READY, unassigned order joined with its restaurant and
// destination data, as fed to the available-deliveries feed.
type ReadyOrder struct {
	Order      Order
	Restaurant Restaurant
	Address    Address
}

// AvailableDelivery is a ready, unassigned order offered to a courier in the
// available-deliveries feed, annotated with distance and an earnings estimate.
type AvailableDelivery struct {
	OrderID           uuid.UUID
	RestaurantName    string
	RestaurantAddress string
	CustomerAddress   string
	OrderAmount       float64
	DistanceKm        float64
	EstimatedEarning  float64
	CreatedAt         time.Time
}
