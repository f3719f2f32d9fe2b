package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/service/dispatch"
	testlog "service-dispatch/internal/testutil"
)

func dispatchRouter(du *stubDispatchUsecase) http.Handler {
	log := testlog.New().Logger()
	h := handlers.NewDispatchHandler(log, du)
	r := chi.NewRouter()
	r.Post("/couriers/{courierID}/deliveries/{orderID}/accept", h.Accept)
	r.Post("/couriers/{courierID}/deliveries/{orderID}/reject", h.Reject)
	r.Patch("/couriers/{courierID}/deliveries/{orderID}/status", h.UpdateStatus)
	return r
}

func resolvePath(action string) string {
	return "/couriers/" + uuid.NewString() + "/deliveries/" + uuid.NewString() + "/" + action
}

func TestAccept_Won(t *testing.T) {
	du := &stubDispatchUsecase{resolveResult: true}
	r := dispatchRouter(du)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, resolvePath("accept"), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"accepted": true, "status": "ACCEPTED"}`, rec.Body.String())
	require.Equal(t, dispatch.DecisionAccept, du.lastDecision)
}

func TestAccept_Lost(t *testing.T) {
	r := dispatchRouter(&stubDispatchUsecase{resolveResult: false})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, resolvePath("accept"), nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "delivery already taken")
}

func TestAccept_OfferNotFound(t *testing.T) {
	r := dispatchRouter(&stubDispatchUsecase{resolveErr: apperr.ErrNotFound})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, resolvePath("accept"), nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccept_BadIDs(t *testing.T) {
	r := dispatchRouter(&stubDispatchUsecase{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/couriers/abc/deliveries/"+uuid.NewString()+"/accept", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/couriers/"+uuid.NewString()+"/deliveries/xyz/accept", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReject(t *testing.T) {
	du := &stubDispatchUsecase{resolveResult: true}
	r := dispatchRouter(du)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, resolvePath("reject"), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"accepted": false, "status": "REJECTED"}`, rec.Body.String())
	require.Equal(t, dispatch.DecisionReject, du.lastDecision)
}

func TestReject_NotPending(t *testing.T) {
	r := dispatchRouter(&stubDispatchUsecase{resolveResult: false})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, resolvePath("reject"), nil))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	du := &stubDispatchUsecase{
		statusOrder: &domain.Order{ID: orderID, Status: domain.StatusOutForDelivery},
	}
	r := dispatchRouter(du)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, resolvePath("status"),
		strings.NewReader(`{"status": "PICKED_UP"}`))
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"order_id": "`+orderID.String()+`", "status": "OUT_FOR_DELIVERY"}`,
		rec.Body.String())
	require.Equal(t, "PICKED_UP", du.lastStatus)
}

func TestUpdateStatus_Failed(t *testing.T) {
	orderID := uuid.New()
	du := &stubDispatchUsecase{
		statusOrder: &domain.Order{ID: orderID, Status: domain.StatusDeliveryFailed, FailureReason: "customer unreachable"},
	}
	r := dispatchRouter(du)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, resolvePath("status"),
		strings.NewReader(`{"status": "FAILED", "reason": "customer unreachable"}`))
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"failure_reason":"customer unreachable"`)
	require.Equal(t, "customer unreachable", du.lastReason)
}

func TestUpdateStatus_Errors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown status", apperr.ErrInvalid, http.StatusBadRequest},
		{"illegal transition", apperr.IllegalTransitionError{Status: "READY", Event: "DELIVERED"}, http.StatusConflict},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"internal", apperr.ErrUpstream, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := dispatchRouter(&stubDispatchUsecase{statusErr: tc.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, resolvePath("status"),
				strings.NewReader(`{"status": "DELIVERED"}`))
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestUpdateStatus_BadJSON(t *testing.T) {
	r := dispatchRouter(&stubDispatchUsecase{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, resolvePath("status"),
		strings.NewReader(`{"status": "PICKED_UP", "extra": true}`))
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
