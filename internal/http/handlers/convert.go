package handlers

import "service-dispatch/internal/domain"

func deliveryToResponse(d domain.AvailableDelivery) availableDeliveryDTO {
	return availableDeliveryDTO{
		OrderID:           d.OrderID.String(),
		RestaurantName:    d.RestaurantName,
		RestaurantAddress: d.RestaurantAddress,
		CustomerAddress:   d.CustomerAddress,
		OrderAmount:       d.OrderAmount,
		DistanceKm:        d.DistanceKm,
		EstimatedEarning:  d.EstimatedEarning,
		CreatedAt:         d.CreatedAt,
	}
}

func deliveriesToResponse(list []domain.AvailableDelivery) []availableDeliveryDTO {
	out := make([]availableDeliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, deliveryToResponse(d))
	}
	return out
}

func orderToStatusResponse(o domain.Order) orderStatusResponse {
	return orderStatusResponse{
		OrderID:       o.ID.String(),
		Status:        string(o.Status),
		FailureReason: o.FailureReason,
	}
}
