package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch_db",
}

var defaultKafka = Kafka{
	GroupID: "service-dispatch",
	Topic:   "order-events",
}

var defaultDispatch = Dispatch{
	RadiusKm:         5.0,
	OperationTimeout: 3 * time.Second,
	OfferTTL:         10 * time.Minute,
	SweepInterval:    30 * time.Second,
}

var defaultEarnings = Earnings{
	BaseRate:  2.0,
	PerKmRate: 0.5,
	OrderPct:  0.05,
}

var defaultRouting = Routing{
	BaseURL:     "http://localhost:9080",
	Timeout:     2 * time.Second,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

var defaultPush = Push{
	BaseURL: "http://localhost:9081",
	Timeout: 2 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       5,
	Burst:      10,
	TTL:        10 * time.Minute,
	MaxBuckets: 100_000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default order-events consumer settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultDispatch returns the default dispatch settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultEarnings returns the default earnings coefficients.
func DefaultEarnings() Earnings {
	return defaultEarnings
}

// DefaultRouting returns the default routing provider settings.
func DefaultRouting() Routing {
	return defaultRouting
}

// DefaultPush returns the default push gateway settings.
func DefaultPush() Push {
	return defaultPush
}

// DefaultRateLimit returns the default throttling settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

var defaultPprof = Pprof{
	Enabled: false,
	Addr:    "127.0.0.1:6060",
}

// DefaultPprof returns the default profiling server settings.
func DefaultPprof() Pprof {
	return defaultPprof
}
