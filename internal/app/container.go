package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/gateway/push"
	"service-dispatch/internal/gateway/routing"
	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/pprofserver"
	"service-dispatch/internal/http/router"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/repository"
	"service-dispatch/internal/service/courier"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/tracking"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		newAppMetrics,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

// appMetrics groups the service counters so providers can share one
// registration pass.
type appMetrics struct {
	offersCreated     prometheus.Counter
	acceptsWon        prometheus.Counter
	acceptsLost       prometheus.Counter
	broadcasts        prometheus.Counter
	deadSubscribers   prometheus.Counter
	gatewayRetries    prometheus.Counter
	rateLimitExceeded prometheus.Counter
}

func newAppMetrics() *appMetrics {
	return &appMetrics{
		offersCreated:     registerCounter(metrics.NewOffersCreatedTotal()),
		acceptsWon:        registerCounter(metrics.NewAcceptsWonTotal()),
		acceptsLost:       registerCounter(metrics.NewAcceptsLostTotal()),
		broadcasts:        registerCounter(metrics.NewBroadcastsTotal()),
		deadSubscribers:   registerCounter(metrics.NewDeadSubscribersTotal()),
		gatewayRetries:    registerCounter(metrics.NewGatewayRetriesTotal()),
		rateLimitExceeded: registerCounter(metrics.NewRateLimitExceededTotal()),
	}
}

// registerCounter registers c with the default registry, reusing the
// existing collector when the container is rebuilt in-process.
func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewPositionRepo,
		repository.NewOfferRepo,
		repository.NewOrderRepo,
		func(cfg *config.Config, logger logx.Logger, m *appMetrics) (*routing.RetryingGateway, error) {
			base, err := routing.NewHTTPGateway(cfg.Routing.BaseURL, cfg.Routing.Timeout)
			if err != nil {
				return nil, err
			}
			return routing.NewRetryingGateway(base, logger, m.gatewayRetries, routing.RetryConfig{
				MaxAttempts: cfg.Routing.MaxAttempts,
				BaseDelay:   cfg.Routing.BaseDelay,
				MaxDelay:    cfg.Routing.MaxDelay,
			}), nil
		},
		func(cfg *config.Config) (*push.HTTPGateway, error) {
			return push.NewHTTPGateway(cfg.Push.BaseURL, cfg.Push.Timeout)
		},
		func(logger logx.Logger, m *appMetrics) *tracking.Hub {
			return tracking.NewHub(logger, m.broadcasts, m.deadSubscribers)
		},
		func(
			cfg *config.Config,
			ordersRepo *repository.OrderRepo,
			positions *repository.PositionRepo,
			routingGw *routing.RetryingGateway,
			hub *tracking.Hub,
			logger logx.Logger,
		) *tracking.Service {
			return tracking.NewService(ordersRepo, positions, routingGw, hub, logger, cfg.Dispatch.OperationTimeout)
		},
		func(cfg *config.Config, positions *repository.PositionRepo, tracker *tracking.Service) *courier.Service {
			return courier.NewService(positions, tracker, cfg.Dispatch.OperationTimeout)
		},
		func(
			cfg *config.Config,
			offers *repository.OfferRepo,
			ordersRepo *repository.OrderRepo,
			registry *courier.Service,
			notifier *push.HTTPGateway,
			tracker *tracking.Service,
			logger logx.Logger,
			m *appMetrics,
		) *dispatch.Service {
			return dispatch.NewService(dispatch.Deps{
				Offers:        offers,
				Orders:        ordersRepo,
				Registry:      registry,
				Notifier:      notifier,
				Tracker:       tracker,
				Log:           logger,
				OffersCreated: m.offersCreated,
				AcceptsWon:    m.acceptsWon,
				AcceptsLost:   m.acceptsLost,
			}, dispatch.Settings{
				RadiusKm:         cfg.Dispatch.RadiusKm,
				OperationTimeout: cfg.Dispatch.OperationTimeout,
				OfferTTL:         cfg.Dispatch.OfferTTL,
				Earnings: dispatch.Rates{
					Base:     cfg.Earnings.BaseRate,
					PerKm:    cfg.Earnings.PerKmRate,
					OrderPct: cfg.Earnings.OrderPct,
				},
			})
		},
	)
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

// providePprofServer returns a nil server when profiling is disabled.
func providePprofServer(cfg *config.Config) pprofOut {
	if !cfg.Pprof.Enabled {
		return pprofOut{}
	}
	return pprofOut{Server: &http.Server{
		Addr: cfg.Pprof.Addr,
		Handler: pprofserver.Handler(pprofserver.Config{
			User: cfg.Pprof.User,
			Pass: cfg.Pprof.Pass,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// no WriteTimeout: the tracking stream stays open for the
			// length of a delivery
			IdleTimeout: 60 * time.Second,
		}
	}
	return provideAll(container,
		providePprofServer,
		handlers.New,
		handlers.NewCourierUsecase,
		handlers.NewDispatchUsecase,
		handlers.NewTrackingUsecase,
		handlers.NewCourierHandler,
		handlers.NewDispatchHandler,
		handlers.NewTrackingHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		router.New,
		serverProvider,
	)
}
