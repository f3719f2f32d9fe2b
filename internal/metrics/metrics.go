package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewOffersCreatedTotal returns a Prometheus counter for delivery offers fanned out by dispatch
func NewOffersCreatedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_offers_created_total",
		Help: "Total number of delivery offers fanned out by dispatch",
	})
}

// NewAcceptsWonTotal returns a Prometheus counter for accept calls that committed a winner
func NewAcceptsWonTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_accepts_won_total",
		Help: "Total number of accept calls that committed a winner",
	})
}

// NewAcceptsLostTotal returns a Prometheus counter for accept calls that arrived after a winner
func NewAcceptsLostTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_accepts_lost_total",
		Help: "Total number of accept calls that lost the acceptance race",
	})
}

// NewBroadcastsTotal returns a Prometheus counter for path broadcasts published to subscribers
func NewBroadcastsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_broadcasts_total",
		Help: "Total number of path broadcasts published to tracking subscribers",
	})
}

// NewDeadSubscribersTotal returns a Prometheus counter for subscribers dropped on failed sends
func NewDeadSubscribersTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_dead_subscribers_total",
		Help: "Total number of tracking subscribers dropped after a failed send",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// NewRateLimitExceededTotal returns a Prometheus counter for requests denied by the rate limiter
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of requests denied by the rate limiter",
	})
}
