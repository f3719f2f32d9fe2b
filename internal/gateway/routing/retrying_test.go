package routing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

type scriptedProvider struct {
	calls   int
	results []error
	route   domain.Route
}

func (p *scriptedProvider) Route(context.Context, domain.Point, []domain.Point, domain.Point) (*domain.Route, error) {
	err := p.results[p.calls]
	p.calls++
	if err != nil {
		return nil, err
	}
	r := p.route
	return &r, nil
}

type countingCounter struct{ n int }

func (c *countingCounter) Inc() { c.n++ }

func cfg() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestRetryingGateway_SucceedsAfterTransientFailures(t *testing.T) {
	transient := fmt.Errorf("routing gateway: %w", statusError{Code: 503})
	next := &scriptedProvider{
		results: []error{transient, transient, nil},
		route:   domain.Route{Polyline: "abc"},
	}
	retries := &countingCounter{}
	gw := NewRetryingGateway(next, nil, retries, cfg())

	route, err := gw.Route(context.Background(), domain.Point{}, nil, domain.Point{})
	require.NoError(t, err)
	require.Equal(t, "abc", route.Polyline)
	require.Equal(t, 3, next.calls)
	require.Equal(t, 2, retries.n)
}

func TestRetryingGateway_GivesUpAfterMaxAttempts(t *testing.T) {
	transient := fmt.Errorf("routing gateway: %w", statusError{Code: 500})
	next := &scriptedProvider{results: []error{transient, transient, transient}}
	gw := NewRetryingGateway(next, nil, nil, cfg())

	_, err := gw.Route(context.Background(), domain.Point{}, nil, domain.Point{})
	require.ErrorIs(t, err, apperr.ErrUpstream)
	require.Equal(t, 3, next.calls)
}

func TestRetryingGateway_DoesNotRetryClientErrors(t *testing.T) {
	badRequest := fmt.Errorf("routing gateway: %w", statusError{Code: 400})
	next := &scriptedProvider{results: []error{badRequest, nil, nil}}
	gw := NewRetryingGateway(next, nil, nil, cfg())

	_, err := gw.Route(context.Background(), domain.Point{}, nil, domain.Point{})
	require.Error(t, err)
	require.Equal(t, 1, next.calls)
}

func TestRetryingGateway_RetriesTransportFailures(t *testing.T) {
	down := fmt.Errorf("routing gateway: %w: connection refused", apperr.ErrUpstream)
	next := &scriptedProvider{results: []error{down, nil}, route: domain.Route{Polyline: "ok"}}
	gw := NewRetryingGateway(next, nil, nil, cfg())

	route, err := gw.Route(context.Background(), domain.Point{}, nil, domain.Point{})
	require.NoError(t, err)
	require.Equal(t, "ok", route.Polyline)
	require.Equal(t, 2, next.calls)
}

func TestRetryingGateway_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transient := fmt.Errorf("routing gateway: %w", statusError{Code: 503})
	next := &scriptedProvider{results: []error{transient, nil, nil}}
	gw := NewRetryingGateway(next, nil, nil, cfg())

	_, err := gw.Route(ctx, domain.Point{}, nil, domain.Point{})
	require.Error(t, err)
	require.Equal(t, 1, next.calls)
}

func TestBackoff(t *testing.T) {
	require.Equal(t, time.Millisecond, backoff(time.Millisecond, 4*time.Millisecond, 1))
	require.Equal(t, 2*time.Millisecond, backoff(time.Millisecond, 4*time.Millisecond, 2))
	require.Equal(t, 4*time.Millisecond, backoff(time.Millisecond, 4*time.Millisecond, 3))
	// capped at max
	require.Equal(t, 4*time.Millisecond, backoff(time.Millisecond, 4*time.Millisecond, 10))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, isRetryable(statusError{Code: 500}))
	require.True(t, isRetryable(statusError{Code: 429}))
	require.False(t, isRetryable(statusError{Code: 404}))
	require.True(t, isRetryable(fmt.Errorf("x: %w", apperr.ErrUpstream)))
	require.False(t, isRetryable(errors.New("parse failure")))
}
