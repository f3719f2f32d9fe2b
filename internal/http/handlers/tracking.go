package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// TrackingHandler serves the live tracking endpoints.
type TrackingHandler struct {
	usecase trackingUsecase
	logger  logx.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(logger logx.Logger, uc trackingUsecase) *TrackingHandler {
	return &TrackingHandler{usecase: uc, logger: logger}
}

// GetPath handles GET /orders/{orderID}/path with a one-shot path snapshot.
func (h *TrackingHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuidFromURL(r, "orderID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	path, err := h.usecase.ComputePath(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, path)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, apperr.ErrPreconditionFailed):
		writeError(h.logger, w, r, http.StatusConflict, "no courier on the way")
	case errors.Is(err, apperr.ErrUpstream):
		writeError(h.logger, w, r, http.StatusBadGateway, "routing unavailable")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Track handles GET /orders/{orderID}/track as a server-sent events stream.
// Each broadcast arrives as one "path" event carrying the DeliveryPath JSON.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuidFromURL(r, "orderID")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	role := domain.RoleCustomer
	if q := strings.TrimSpace(r.URL.Query().Get("role")); q != "" {
		role = domain.TrackingRole(strings.ToUpper(q))
		if !role.Valid() {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid role")
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(h.logger, w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	subscriberID := uuid.NewString()
	ch := newSSEChannel(w, flusher)

	if err := h.usecase.StartTracking(r.Context(), orderID, subscriberID, role, ch); err != nil {
		// headers are out, all we can do is end the stream
		h.logger.Warn("tracking subscription failed",
			logx.String("order_id", orderID.String()),
			logx.Err(err))
		return
	}

	select {
	case <-r.Context().Done():
		h.usecase.StopTracking(orderID, subscriberID)
	case <-ch.done:
		// the hub closed the stream (terminal order or dead send)
	}
}

// sseChannel adapts an SSE response to the tracking channel contract.
// Send and Close may race with the hub, hence the lock.
type sseChannel struct {
	w     http.ResponseWriter
	flush http.Flusher

	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newSSEChannel(w http.ResponseWriter, flush http.Flusher) *sseChannel {
	return &sseChannel{w: w, flush: flush, done: make(chan struct{})}
}

func (c *sseChannel) Send(path domain.DeliveryPath) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return errors.New("stream closed")
	default:
	}

	payload, err := json.Marshal(path)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.w, "event: path\ndata: %s\n\n", payload); err != nil {
		return err
	}
	c.flush.Flush()
	return nil
}

func (c *sseChannel) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
