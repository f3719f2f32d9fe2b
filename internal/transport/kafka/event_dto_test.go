package kafka_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/service/orders"
	"service-dispatch/internal/transport/kafka"
)

func TestToDomain_TrimsAndCopiesFields(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	dto := kafka.EventDTO{
		OrderID:   "  8f14e45f-ceea-4673-9d9f-bba2a9a3f9d1  ",
		Status:    "  ready  ",
		CreatedAt: ts,
	}

	got := kafka.ToDomain(dto)

	require.Equal(t, orders.Event{
		OrderID:   "8f14e45f-ceea-4673-9d9f-bba2a9a3f9d1",
		Status:    "ready",
		CreatedAt: ts,
	}, got)
}
