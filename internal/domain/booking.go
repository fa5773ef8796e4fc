package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsLive reports whether a booking in this status consumes capacity.
func (s BookingStatus) IsLive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
// Cancelled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

type HotelBooking struct {
	ID         int64           `json:"id"`
	RoomID     int64           `json:"room_id"`
	UserID     int64           `json:"user_id"`
	Stay       Stay            `json:"stay"`
	GuestCount int             `json:"guest_count"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     BookingStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type FlightBooking struct {
	ID             int64           `json:"id"`
	FlightIDs      []int64         `json:"flight_ids"`
	UserID         int64           `json:"user_id"`
	PassengerCount int             `json:"passenger_count"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Status         BookingStatus   `json:"status"`
	Reference      string          `json:"reference"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Includes reports whether the booking holds seats on the given flight.
func (b FlightBooking) Includes(flightID int64) bool {
	for _, id := range b.FlightIDs {
		if id == flightID {
			return true
		}
	}
	return false
}

// BookingFilter narrows booking listings. A nil UserID lists every owner.
type BookingFilter struct {
	UserID *int64
	Status BookingStatus
	Offset int
	Limit  int
}
