package handlers

import (
	"time"
)

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

type availableDeliveryDTO struct {
	OrderID           string    `json:"order_id"`
	RestaurantName    string    `json:"restaurant_name"`
	RestaurantAddress string    `json:"restaurant_address"`
	CustomerAddress   string    `json:"customer_address"`
	OrderAmount       float64   `json:"order_amount"`
	DistanceKm        float64   `json:"distance_km"`
	EstimatedEarning  float64   `json:"estimated_earning"`
	CreatedAt         time.Time `json:"created_at"`
}

type resolveOfferResponse struct {
	Accepted bool   `json:"accepted"`
	Status   string `json:"status"`
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type orderStatusResponse struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}
