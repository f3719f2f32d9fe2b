package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the order-events consumer and the offer sweeper.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	dispatchSvc *dispatch.Service,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(pool, logger, consumer)

	go sweepExpiredOffers(ctx, dispatchSvc, cfg.Dispatch.SweepInterval, logger)

	logger.Info("service-dispatch-worker started")
	return consumer.Run(ctx)
}

// sweepExpiredOffers cancels offers past their TTL so couriers stop seeing
// stale requests. Runs until ctx is done.
func sweepExpiredOffers(ctx context.Context, svc *dispatch.Service, interval time.Duration, logger logx.Logger) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.ExpireOffers(ctx)
			if err != nil {
				logger.Error("offer sweep failed", logx.Err(err))
				continue
			}
			if n > 0 {
				logger.Info("expired stale offers", logx.Int("count", int(n)))
			}
		}
	}
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, kafkaConsumer *kafka.Consumer) {
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
