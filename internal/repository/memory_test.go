package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	require.NoError(t, m.Load(SampleCatalog()))
	return m
}

func TestMemory_LoadAssignsIDs(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()

	room, err := m.GetRoom(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "301", room.Number)
	assert.Equal(t, "Seaside Resort", room.HotelName)
	assert.Equal(t, "Sochi", room.City)

	_, err = m.GetRoom(ctx, 99)
	assert.True(t, domain.IsNotFound(err))

	_, err = m.AddRoom(domain.Room{HotelID: 42})
	assert.True(t, domain.IsNotFound(err))
}

func TestMemory_ListRoomsFilter(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()
	maxPrice := decimal.NewFromInt(150)

	rooms, err := m.ListRooms(ctx, domain.RoomFilter{City: "moscow", MaxPrice: &maxPrice})
	require.NoError(t, err)
	ids := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{2, 3, 4}, ids)

	rooms, err = m.ListRooms(ctx, domain.RoomFilter{Type: domain.RoomTypePremium, MinCapacity: 2})
	require.NoError(t, err)
	assert.Len(t, rooms, 3)

	rooms, err = m.ListRooms(ctx, domain.RoomFilter{MinCapacity: 3})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "202", rooms[0].Number)
}

func TestMemory_ListFlights(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()
	day := domain.Date(2024, time.January, 15)

	flights, err := m.ListFlights(ctx, domain.FlightFilter{
		DepartureCity: "MOSCOW",
		ArrivalCity:   "sochi",
		DepartureFrom: day,
		DepartureTo:   day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, "SU300", flights[0].Number)
	assert.Equal(t, "SU310", flights[1].Number)

	flights, err = m.ListFlights(ctx, domain.FlightFilter{SortBy: domain.FlightSortPrice})
	require.NoError(t, err)
	require.Len(t, flights, 6)
	assert.True(t, flights[0].Price.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "SU100", flights[0].Number)
}

func TestMemory_HotelBookingLifecycle(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()

	b := &domain.HotelBooking{
		RoomID:     1,
		UserID:     10,
		Stay:       domain.NewStay(domain.Date(2024, 1, 15), domain.Date(2024, 1, 20)),
		GuestCount: 2,
		TotalPrice: decimal.NewFromInt(1000),
		Status:     domain.BookingStatusConfirmed,
	}
	require.NoError(t, m.CreateHotelBooking(ctx, b))
	assert.Equal(t, int64(1), b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	bookings, err := m.RoomBookings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	updated, err := m.UpdateHotelBookingStatus(ctx, b.ID, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, updated.Status)

	_, err = m.UpdateHotelBookingStatus(ctx, b.ID, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.GetHotelBooking(ctx, 2)
	assert.True(t, domain.IsNotFound(err))

	err = m.CreateHotelBooking(ctx, &domain.HotelBooking{RoomID: 77})
	assert.True(t, domain.IsNotFound(err))
}

func TestMemory_FlightBookingReferenceAndIndex(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()

	b := &domain.FlightBooking{FlightIDs: []int64{1, 2}, UserID: 3, PassengerCount: 2, Status: domain.BookingStatusConfirmed}
	require.NoError(t, m.CreateFlightBooking(ctx, b, func(id int64, _ time.Time) string {
		return fmt.Sprintf("REF%d", id)
	}))
	assert.Equal(t, "REF1", b.Reference)

	// the stored copy must not alias the caller's slice
	b.FlightIDs[0] = 99

	for _, flightID := range []int64{1, 2} {
		bookings, err := m.FlightBookings(ctx, flightID)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, []int64{1, 2}, bookings[0].FlightIDs)
	}

	other, err := m.FlightBookings(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, other)

	err = m.CreateFlightBooking(ctx, &domain.FlightBooking{FlightIDs: []int64{1, 40}}, nil)
	assert.True(t, domain.IsNotFound(err))
}

func TestMemory_ListBookingsNewestFirstAndPaged(t *testing.T) {
	m := sampleMemory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		user := int64(1)
		if i%2 == 1 {
			user = 2
		}
		b := &domain.HotelBooking{
			RoomID: 1,
			UserID: user,
			Stay:   domain.StayFor(domain.Date(2024, 2, 1+i*3), 2),
			Status: domain.BookingStatusConfirmed,
		}
		require.NoError(t, m.CreateHotelBooking(ctx, b))
	}

	all, err := m.ListHotelBookings(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[0].ID)

	user := int64(1)
	own, err := m.ListHotelBookings(ctx, domain.BookingFilter{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, own, 3)

	page, err := m.ListHotelBookings(ctx, domain.BookingFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(4), page[0].ID)

	beyond, err := m.ListHotelBookings(ctx, domain.BookingFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}
