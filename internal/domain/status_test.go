package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

func paidOrder(status domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		RestaurantID:     uuid.New(),
		Status:           status,
		PaymentConfirmed: true,
	}
}

func TestAdvance_HappyPath(t *testing.T) {
	t.Parallel()

	o := paidOrder(domain.StatusPending)

	o, events, err := domain.Advance(o, domain.Transition{Event: domain.EventMarkReady})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, o.Status)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotifyCustomer, events[0].Notify)

	courierID := uuid.New()
	o.CourierID = &courierID
	o, events, err = domain.Advance(o, domain.Transition{Event: domain.EventCourierAccepted})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, o.Status)
	require.Len(t, events, 2)
	assert.Equal(t, domain.NotifyCustomer, events[0].Notify)
	assert.Equal(t, domain.NotifyRestaurant, events[1].Notify)

	o, _, err = domain.Advance(o, domain.Transition{Event: domain.EventPickedUp})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOutForDelivery, o.Status)

	o, _, err = domain.Advance(o, domain.Transition{Event: domain.EventDelivered})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)
	assert.True(t, o.Status.Terminal())
}

func TestAdvance_DeliveryFailedRecordsReason(t *testing.T) {
	t.Parallel()

	o := paidOrder(domain.StatusOutForDelivery)

	o, events, err := domain.Advance(o, domain.Transition{Event: domain.EventDeliveryFailed, Reason: "customer unreachable"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeliveryFailed, o.Status)
	assert.Equal(t, "customer unreachable", o.FailureReason)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "customer unreachable")
}

func TestAdvance_IllegalTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status domain.OrderStatus
		event  domain.OrderEvent
	}{
		{"delivered to accepted", domain.StatusDelivered, domain.EventCourierAccepted},
		{"pending picked up", domain.StatusPending, domain.EventPickedUp},
		{"ready delivered", domain.StatusReady, domain.EventDelivered},
		{"cancel out for delivery", domain.StatusOutForDelivery, domain.EventCancelled},
		{"cancel delivered", domain.StatusDelivered, domain.EventCancelled},
		{"ready twice", domain.StatusReady, domain.EventMarkReady},
		{"unknown event", domain.StatusReady, domain.OrderEvent("bogus")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			before := paidOrder(tc.status)
			after, events, err := domain.Advance(before, domain.Transition{Event: tc.event})
			require.Error(t, err)
			assert.True(t, apperr.IsIllegalTransition(err))
			assert.Equal(t, before.Status, after.Status, "order must be unchanged")
			assert.Empty(t, events)
		})
	}
}

func TestAdvance_MarkReadyGuards(t *testing.T) {
	t.Parallel()

	o := paidOrder(domain.StatusPending)
	o.PaymentConfirmed = false

	_, _, err := domain.Advance(o, domain.Transition{Event: domain.EventMarkReady})
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)

	o.CashOnDelivery = true
	o, _, err = domain.Advance(o, domain.Transition{Event: domain.EventMarkReady})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, o.Status)
}

func TestAdvance_CourierAcceptedRequiresAssignment(t *testing.T) {
	t.Parallel()

	o := paidOrder(domain.StatusReady)
	_, _, err := domain.Advance(o, domain.Transition{Event: domain.EventCourierAccepted})
	require.ErrorIs(t, err, apperr.ErrPreconditionFailed)
}

func TestAdvance_CancelFromPrePickupStates(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.OrderStatus{domain.StatusPending, domain.StatusReady, domain.StatusAccepted} {
		o := paidOrder(status)
		o, _, err := domain.Advance(o, domain.Transition{Event: domain.EventCancelled})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, o.Status)
	}
}
