package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// The tracking stream lives outside the timeout group; everything else gets
// a request deadline. A nil limits middleware disables throttling.
func New(
	base *handlers.Handlers,
	courier *handlers.CourierHandler,
	dispatch *handlers.DispatchHandler,
	tracking *handlers.TrackingHandler,
	limits *ratelimit.Middleware,
	logger logx.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(logger))
	r.Use(chimw.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(5 * time.Second))

		r.Get("/ping", base.Ping)
		r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(base.HealthcheckHead))
		r.Handle("/metrics", promhttp.Handler())

		r.Route("/couriers/{courierID}", func(r chi.Router) {
			if limits != nil {
				r.With(limits.Handler()).Post("/location", courier.UpdateLocation)
			} else {
				r.Post("/location", courier.UpdateLocation)
			}
			r.Put("/availability", courier.SetAvailability)
			r.Get("/deliveries/available", courier.AvailableDeliveries)
			r.Post("/deliveries/{orderID}/accept", dispatch.Accept)
			r.Post("/deliveries/{orderID}/reject", dispatch.Reject)
			r.Patch("/deliveries/{orderID}/status", dispatch.UpdateStatus)
		})

		r.Get("/orders/{orderID}/path", tracking.GetPath)
	})

	// long-lived SSE stream, no request timeout
	r.Get("/orders/{orderID}/track", tracking.Track)

	r.NotFound(http.HandlerFunc(base.NotFound))

	return r
}
