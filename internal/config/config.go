package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var (
	portFlagOnce sync.Once
	portFlag     *int
	portChanged  bool
)

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores order-events consumer settings. Empty brokers disable the consumer.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Dispatch stores dispatch engine settings.
type Dispatch struct {
	RadiusKm         float64
	OperationTimeout time.Duration
	OfferTTL         time.Duration
	SweepInterval    time.Duration
}

// Earnings stores the courier earnings formula coefficients.
type Earnings struct {
	BaseRate  float64
	PerKmRate float64
	OrderPct  float64
}

// Routing stores routing provider client settings.
type Routing struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Push stores push gateway client settings.
type Push struct {
	BaseURL string
	Timeout time.Duration
}

// Pprof stores the debug profiling server settings. Disabled by default;
// non-loopback access requires basic auth.
type Pprof struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// RateLimit stores per-caller throttling settings for location updates.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Config stores service settings.
type Config struct {
	Port      int
	DB        DB
	Kafka     Kafka
	Dispatch  Dispatch
	Earnings  Earnings
	Routing   Routing
	Push      Push
	RateLimit RateLimit
	Pprof     Pprof
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     envInt("PORT", DefaultPort()),
		DB:       loadDB(),
		Kafka:    loadKafka(),
		Dispatch: loadDispatch(),
		Earnings: loadEarnings(),
		Routing:  loadRouting(),
		Push:     loadPush(),
	}
	cfg.RateLimit = loadRateLimit()
	cfg.Pprof = loadPprof()

	// flags register once; repeated Load calls reuse the parsed value
	portFlagOnce.Do(func() {
		fs := pflag.NewFlagSet("service-dispatch", pflag.ContinueOnError)
		fs.ParseErrorsWhitelist.UnknownFlags = true
		portFlag = fs.IntP("port", "p", cfg.Port, "port to listen on")
		if err := fs.Parse(os.Args[1:]); err != nil {
			log.Printf("warning: flags not parsed: %v", err)
		}
		portChanged = fs.Changed("port")
	})
	if portFlag != nil && portChanged {
		cfg.Port = *portFlag
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Dispatch.RadiusKm <= 0 {
		return fmt.Errorf("invalid dispatch radius: %f", c.Dispatch.RadiusKm)
	}
	if c.Dispatch.OfferTTL <= 0 {
		return fmt.Errorf("invalid offer TTL: %v", c.Dispatch.OfferTTL)
	}
	return nil
}

func loadDB() DB {
	d := DefaultDB()
	d.Host = envStr("DB_HOST", d.Host)
	d.Port = envStr("DB_PORT", d.Port)
	d.User = envStr("DB_USER", d.User)
	d.Pass = envStr("DB_PASS", d.Pass)
	d.Name = envStr("DB_NAME", d.Name)
	return d
}

func loadKafka() Kafka {
	k := DefaultKafka()
	if v := envStr("KAFKA_BROKERS", ""); v != "" {
		k.Brokers = splitCSV(v)
	}
	k.GroupID = envStr("KAFKA_GROUP_ID", k.GroupID)
	k.Topic = envStr("KAFKA_ORDERS_TOPIC", k.Topic)
	return k
}

func loadDispatch() Dispatch {
	d := DefaultDispatch()
	d.RadiusKm = envFloat("DISPATCH_RADIUS_KM", d.RadiusKm)
	d.OperationTimeout = envDur("DISPATCH_TIMEOUT", d.OperationTimeout)
	d.OfferTTL = envDur("OFFER_TTL", d.OfferTTL)
	d.SweepInterval = envDur("OFFER_SWEEP_INTERVAL", d.SweepInterval)
	return d
}

func loadEarnings() Earnings {
	e := DefaultEarnings()
	e.BaseRate = envFloat("EARNINGS_BASE_RATE", e.BaseRate)
	e.PerKmRate = envFloat("EARNINGS_PER_KM_RATE", e.PerKmRate)
	e.OrderPct = envFloat("EARNINGS_ORDER_PCT", e.OrderPct)
	return e
}

func loadRouting() Routing {
	r := DefaultRouting()
	r.BaseURL = envStr("ROUTING_BASE_URL", r.BaseURL)
	r.Timeout = envDur("ROUTING_TIMEOUT", r.Timeout)
	return r
}

func loadPush() Push {
	p := DefaultPush()
	p.BaseURL = envStr("PUSH_BASE_URL", p.BaseURL)
	p.Timeout = envDur("PUSH_TIMEOUT", p.Timeout)
	return p
}

func loadPprof() Pprof {
	p := DefaultPprof()
	p.Enabled = envBool("PPROF_ENABLED", p.Enabled)
	p.Addr = envStr("PPROF_ADDR", p.Addr)
	p.User = envStr("PPROF_USER", p.User)
	p.Pass = envStr("PPROF_PASS", p.Pass)
	return p
}

func loadRateLimit() RateLimit {
	rl := DefaultRateLimit()
	rl.Enabled = envBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.Rate = envFloat("RATE_LIMIT_RATE", rl.Rate)
	rl.Burst = envInt("RATE_LIMIT_BURST", rl.Burst)
	rl.TTL = envDur("RATE_LIMIT_TTL", rl.TTL)
	rl.MaxBuckets = envInt("RATE_LIMIT_MAX_BUCKETS", rl.MaxBuckets)
	return rl
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
