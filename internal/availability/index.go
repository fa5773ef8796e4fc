// Package availability answers capacity questions for rooms and flights from
// the booking records. Consumed capacity is always derived from the live
// bookings; nothing here caches it.
//
// The answers are only authoritative while the caller holds the resource lock
// (see internal/lock). Without it they are advisory, which is fine for search.
package availability

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// BookingReader is the read side of the booking store the index needs.
type BookingReader interface {
	RoomBookings(ctx context.Context, roomID int64) ([]domain.HotelBooking, error)
	FlightBookings(ctx context.Context, flightID int64) ([]domain.FlightBooking, error)
}

// Overlaps applies the half-open rule: existing.CheckIn < stay.CheckOut && existing.CheckOut > stay.CheckIn.
func Overlaps(existing, stay domain.Stay) bool {
	return existing.Overlaps(stay)
}

// RoomIsFree reports whether no live booking in bookings overlaps stay.
func RoomIsFree(bookings []domain.HotelBooking, stay domain.Stay) bool {
	for _, b := range bookings {
		if b.Status.IsLive() && Overlaps(b.Stay, stay) {
			return false
		}
	}
	return true
}

// SeatsTaken sums the passengers of live bookings holding seats on the flight.
func SeatsTaken(flightID int64, bookings []domain.FlightBooking) int {
	taken := 0
	for _, b := range bookings {
		if b.Status.IsLive() && b.Includes(flightID) {
			taken += b.PassengerCount
		}
	}
	return taken
}

// SeatsAvailable returns TotalSeats minus the seats taken by live bookings.
// A negative result means the store already holds an oversold flight.
func SeatsAvailable(flight domain.Flight, bookings []domain.FlightBooking) (int, error) {
	available := flight.TotalSeats - SeatsTaken(flight.ID, bookings)
	if available < 0 {
		return 0, &domain.ConsistencyFault{
			Kind:   "flight",
			ID:     flight.ID,
			Detail: fmt.Sprintf("derived seat count is negative (%d)", available),
		}
	}
	return available, nil
}

type Index struct {
	bookings BookingReader
}

func NewIndex(bookings BookingReader) *Index {
	return &Index{bookings: bookings}
}

func (i *Index) RoomIsFree(ctx context.Context, roomID int64, stay domain.Stay) (bool, error) {
	bookings, err := i.bookings.RoomBookings(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("load bookings of room %d: %w", roomID, err)
	}
	return RoomIsFree(bookings, stay), nil
}

func (i *Index) FlightSeatsAvailable(ctx context.Context, flight domain.Flight) (int, error) {
	bookings, err := i.bookings.FlightBookings(ctx, flight.ID)
	if err != nil {
		return 0, fmt.Errorf("load bookings of flight %d: %w", flight.ID, err)
	}
	return SeatsAvailable(flight, bookings)
}
