package routing

import (
	"context"
	"errors"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

type provider interface {
	Route(ctx context.Context, origin domain.Point, waypoints []domain.Point, dest domain.Point) (*domain.Route, error)
}

type counter interface {
	Inc()
}

// RetryConfig tunes the RetryingGateway backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient routing failures with exponential backoff.
type RetryingGateway struct {
	next    provider
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next with retries. next must be non-nil.
func NewRetryingGateway(next provider, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Route calls the wrapped provider, retrying when the failure looks transient.
func (g *RetryingGateway) Route(ctx context.Context, origin domain.Point, waypoints []domain.Point, dest domain.Point) (*domain.Route, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		route, err := g.next.Route(ctx, origin, waypoints, dest)
		if err == nil {
			return route, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("routing gateway retry",
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// isRetryable treats transport failures, 429 and 5xx answers as transient.
// A 4xx other than 429 means the request itself is wrong; retrying cannot help.
func isRetryable(err error) bool {
	var st statusError
	if errors.As(err, &st) {
		return st.Code == 429 || st.Code >= 500
	}
	// upstream error with no HTTP status: the request never completed
	return errors.Is(err, apperr.ErrUpstream)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
