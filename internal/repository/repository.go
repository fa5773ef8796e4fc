package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogRepository is the read-only view of hotels, rooms and flights.
type CatalogRepository interface {
	ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	ListFlights(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
}

// ReferenceFunc derives a booking reference from the id assigned at insertion.
type ReferenceFunc func(id int64, createdAt time.Time) string

// BookingRepository stores hotel and flight bookings. Bookings are never
// deleted; cancellation is a status update.
type BookingRepository interface {
	RoomBookings(ctx context.Context, roomID int64) ([]domain.HotelBooking, error)
	FlightBookings(ctx context.Context, flightID int64) ([]domain.FlightBooking, error)

	CreateHotelBooking(ctx context.Context, booking *domain.HotelBooking) error
	CreateFlightBooking(ctx context.Context, booking *domain.FlightBooking, reference ReferenceFunc) error

	GetHotelBooking(ctx context.Context, id int64) (*domain.HotelBooking, error)
	GetFlightBooking(ctx context.Context, id int64) (*domain.FlightBooking, error)

	UpdateHotelBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.HotelBooking, error)
	UpdateFlightBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.FlightBooking, error)

	ListHotelBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.HotelBooking, error)
	ListFlightBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.FlightBooking, error)
}

// MatchRoom applies a RoomFilter. City is a case-insensitive substring match.
func MatchRoom(room domain.Room, filter domain.RoomFilter) bool {
	if filter.HotelID != 0 && room.HotelID != filter.HotelID {
		return false
	}
	if filter.City != "" && !strings.Contains(strings.ToLower(room.City), strings.ToLower(filter.City)) {
		return false
	}
	if filter.Type != "" && room.Type != filter.Type {
		return false
	}
	if filter.MinPrice != nil && room.PricePerNight.LessThan(*filter.MinPrice) {
		return false
	}
	if filter.MaxPrice != nil && room.PricePerNight.GreaterThan(*filter.MaxPrice) {
		return false
	}
	if filter.MinCapacity > 0 && room.Capacity < filter.MinCapacity {
		return false
	}
	return true
}

// MatchFlight applies a FlightFilter. Cities compare case-insensitively,
// the departure window is [DepartureFrom, DepartureTo).
func MatchFlight(flight domain.Flight, filter domain.FlightFilter) bool {
	if filter.DepartureCity != "" && !strings.EqualFold(flight.DepartureCity, filter.DepartureCity) {
		return false
	}
	if filter.ArrivalCity != "" && !strings.EqualFold(flight.ArrivalCity, filter.ArrivalCity) {
		return false
	}
	if !filter.DepartureFrom.IsZero() && flight.DepartureTime.Before(filter.DepartureFrom) {
		return false
	}
	if !filter.DepartureTo.IsZero() && !flight.DepartureTime.Before(filter.DepartureTo) {
		return false
	}
	return true
}

func matchBooking(userID int64, status domain.BookingStatus, filter domain.BookingFilter) bool {
	if filter.UserID != nil && userID != *filter.UserID {
		return false
	}
	if filter.Status != "" && status != filter.Status {
		return false
	}
	return true
}

func pageBounds(total, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func notFound(kind string, id int64) error {
	return &domain.NotFoundError{Kind: kind, ID: id}
}

func invalidTransition(kind string, id int64, from, to domain.BookingStatus) error {
	return &domain.ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("%s %d cannot move from %s to %s", kind, id, from, to),
	}
}
