package handlers

import (
	"errors"
	"net/http"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/logx"
)

// CourierHandler serves the courier-facing endpoints: position reports,
// availability and the deliveries feed.
type CourierHandler struct {
	courier  courierUsecase
	dispatch dispatchUsecase
	logger   logx.Logger
}

// NewCourierHandler creates a new CourierHandler.
func NewCourierHandler(logger logx.Logger, courier courierUsecase, dispatchSvc dispatchUsecase) *CourierHandler {
	return &CourierHandler{courier: courier, dispatch: dispatchSvc, logger: logger}
}

// UpdateLocation handles POST /couriers/{courierID}/location.
func (h *CourierHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	courierID, err := uuidFromURL(r, "courierID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return
	}
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err = h.courier.UpsertPosition(r.Context(), courierID, req.Latitude, req.Longitude)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "coordinates out of range")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// SetAvailability handles PUT /couriers/{courierID}/availability.
func (h *CourierHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	courierID, err := uuidFromURL(r, "courierID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return
	}
	var req setAvailabilityRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	err = h.courier.SetAvailability(r.Context(), courierID, req.Available)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "courier has no known position")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// AvailableDeliveries handles GET /couriers/{courierID}/deliveries/available.
func (h *CourierHandler) AvailableDeliveries(w http.ResponseWriter, r *http.Request) {
	courierID, err := uuidFromURL(r, "courierID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return
	}

	list, err := h.dispatch.AvailableDeliveries(r.Context(), courierID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, deliveriesToResponse(list))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "courier has no known position")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
