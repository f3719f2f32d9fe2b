package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/dispatch"
)

// DispatchHandler serves offer decisions and delivery status reports.
type DispatchHandler struct {
	usecase dispatchUsecase
	logger  logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, uc dispatchUsecase) *DispatchHandler {
	return &DispatchHandler{usecase: uc, logger: logger}
}

func (h *DispatchHandler) ids(w http.ResponseWriter, r *http.Request) (courierID, orderID uuid.UUID, ok bool) {
	courierID, err := uuidFromURL(r, "courierID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid courier id")
		return uuid.Nil, uuid.Nil, false
	}
	orderID, err = uuidFromURL(r, "orderID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, uuid.Nil, false
	}
	return courierID, orderID, true
}

// Accept handles POST /couriers/{courierID}/deliveries/{orderID}/accept.
// The first accepted offer wins; everyone else gets 409.
func (h *DispatchHandler) Accept(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	won, err := h.usecase.Resolve(r.Context(), courierID, orderID, dispatch.DecisionAccept)
	switch {
	case err == nil && won:
		writeJSON(h.logger, w, r, http.StatusOK, resolveOfferResponse{Accepted: true, Status: "ACCEPTED"})
	case err == nil:
		writeError(h.logger, w, r, http.StatusConflict, "delivery already taken")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Reject handles POST /couriers/{courierID}/deliveries/{orderID}/reject.
func (h *DispatchHandler) Reject(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}

	rejected, err := h.usecase.Resolve(r.Context(), courierID, orderID, dispatch.DecisionReject)
	switch {
	case err == nil && rejected:
		writeJSON(h.logger, w, r, http.StatusOK, resolveOfferResponse{Accepted: false, Status: "REJECTED"})
	case err == nil:
		writeError(h.logger, w, r, http.StatusConflict, "offer is no longer pending")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "offer not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateStatus handles PATCH /couriers/{courierID}/deliveries/{orderID}/status.
func (h *DispatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	courierID, orderID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var req updateDeliveryStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	order, err := h.usecase.UpdateDeliveryStatus(r.Context(), courierID, orderID, req.Status, req.Reason)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, orderToStatusResponse(*order))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "unknown delivery status")
	case apperr.IsIllegalTransition(err):
		writeError(h.logger, w, r, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
