package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/repository"
)

func insertRestaurant(t *testing.T, ctx context.Context, r domain.Restaurant) {
	t.Helper()
	_, err := tcPool.Exec(ctx, `
        INSERT INTO restaurants (id, owner_id, name, address, lat, lng)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, r.ID, r.OwnerID, r.Name, r.Address, r.Lat, r.Lng)
	require.NoError(t, err)
}

func insertAddress(t *testing.T, ctx context.Context, a domain.Address) {
	t.Helper()
	_, err := tcPool.Exec(ctx, `
        INSERT INTO addresses (id, line1, lat, lng)
        VALUES ($1, $2, $3, $4)
    `, a.ID, a.Line1, a.Lat, a.Lng)
	require.NoError(t, err)
}

func ptr(v float64) *float64 { return &v }

func TestOrderRepo_GetAndUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	order := readyOrder()
	insertOrder(t, ctx, order)

	got, err := repo.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.StatusReady, got.Status)
	require.Nil(t, got.CourierID)

	missing, err := repo.Get(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	ok, err := repo.UpdateStatus(ctx, order.ID, domain.StatusDeliveryFailed, "customer unreachable")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = repo.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDeliveryFailed, got.Status)
	require.Equal(t, "customer unreachable", got.FailureReason)

	ok, err = repo.UpdateStatus(ctx, uuid.New(), domain.StatusDelivered, "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOrderRepo_InFlightByCourier(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	courierID := uuid.New()

	got, err := repo.InFlightByCourier(ctx, courierID)
	require.NoError(t, err)
	require.Nil(t, got)

	order := readyOrder()
	order.CourierID = &courierID
	order.Status = domain.StatusOutForDelivery
	insertOrder(t, ctx, order)

	delivered := readyOrder()
	delivered.CourierID = &courierID
	delivered.Status = domain.StatusDelivered
	insertOrder(t, ctx, delivered)

	got, err = repo.InFlightByCourier(ctx, courierID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, order.ID, got.ID)
}

func TestOrderRepo_ReadyUnassigned(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	restaurant := domain.Restaurant{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "Blue Door",
		Address: "12 Baker St",
		Lat:     ptr(40.7128),
		Lng:     ptr(-74.0060),
	}
	address := domain.Address{ID: uuid.New(), Line1: "55 Elm Ave", Lat: ptr(40.72), Lng: ptr(-74.01)}
	insertRestaurant(t, ctx, restaurant)
	insertAddress(t, ctx, address)

	order := readyOrder()
	order.RestaurantID = restaurant.ID
	order.AddressID = address.ID
	insertOrder(t, ctx, order)

	assigned := readyOrder()
	assigned.RestaurantID = restaurant.ID
	assigned.AddressID = address.ID
	courier := uuid.New()
	assigned.CourierID = &courier
	insertOrder(t, ctx, assigned)

	out, err := repo.ReadyUnassigned(ctx)
	require.NoError(t, err)

	var found bool
	for _, ro := range out {
		if ro.Order.ID == order.ID {
			found = true
			require.Equal(t, "Blue Door", ro.Restaurant.Name)
			require.Equal(t, "55 Elm Ave", ro.Address.Line1)
			require.NotNil(t, ro.Restaurant.Lat)
		}
		require.NotEqual(t, assigned.ID, ro.Order.ID)
	}
	require.True(t, found)
}

func TestOrderRepo_GetRestaurantAndAddress(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepo(tcPool)

	restaurant := domain.Restaurant{ID: uuid.New(), OwnerID: uuid.New(), Name: "Corner Pie"}
	insertRestaurant(t, ctx, restaurant)

	got, err := repo.GetRestaurant(ctx, restaurant.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Corner Pie", got.Name)
	require.False(t, got.HasCoordinates())

	missing, err := repo.GetRestaurant(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	address := domain.Address{ID: uuid.New(), Line1: "9 Pine Rd", Lat: ptr(41.0), Lng: ptr(-73.0)}
	insertAddress(t, ctx, address)

	gotAddr, err := repo.GetAddress(ctx, address.ID)
	require.NoError(t, err)
	require.NotNil(t, gotAddr)
	require.Equal(t, "9 Pine Rd", gotAddr.Line1)

	missingAddr, err := repo.GetAddress(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missingAddr)
}
