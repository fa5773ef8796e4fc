package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

const (
	EventHotelBookingCreated    = "hotel_booking_created"
	EventHotelBookingCancelled  = "hotel_booking_cancelled"
	EventFlightBookingCreated   = "flight_booking_created"
	EventFlightBookingCancelled = "flight_booking_cancelled"
)

// BookingEvent is the message published on every booking state change.
type BookingEvent struct {
	Type        string    `json:"type"`
	Kind        string    `json:"kind"`
	BookingID   int64     `json:"booking_id"`
	Reference   string    `json:"reference,omitempty"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	ResourceIDs []int64   `json:"resource_ids"`
	CheckIn     string    `json:"check_in,omitempty"`
	CheckOut    string    `json:"check_out,omitempty"`
	Units       int       `json:"units"`
	TotalPrice  string    `json:"total_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Key is the partition key: the reference when there is one, else kind and id.
func (e BookingEvent) Key() string {
	if e.Reference != "" {
		return e.Reference
	}
	return e.Kind + "-" + strconv.FormatInt(e.BookingID, 10)
}

func NewHotelBookingEvent(eventType string, b *domain.HotelBooking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		Kind:        "hotel",
		BookingID:   b.ID,
		UserID:      b.UserID,
		Status:      string(b.Status),
		ResourceIDs: []int64{b.RoomID},
		CheckIn:     b.Stay.CheckIn.Format(domain.DateLayout),
		CheckOut:    b.Stay.CheckOut.Format(domain.DateLayout),
		Units:       b.GuestCount,
		TotalPrice:  b.TotalPrice.StringFixed(2),
		OccurredAt:  at,
	}
}

func NewFlightBookingEvent(eventType string, b *domain.FlightBooking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		Kind:        "flight",
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		Status:      string(b.Status),
		ResourceIDs: append([]int64(nil), b.FlightIDs...),
		Units:       b.PassengerCount,
		TotalPrice:  b.TotalPrice.StringFixed(2),
		OccurredAt:  at,
	}
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	if event.Type == "" {
		return BookingEvent{}, fmt.Errorf("decode booking event: missing type")
	}
	return event, nil
}
