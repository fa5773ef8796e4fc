package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/kafka"
)

// Sender turns booking events into customer notifications. Delivery is a log
// line until a mail gateway is wired in.
type Sender struct {
	logf func(format string, args ...any)
}

func NewSender() *Sender {
	return &Sender{logf: log.Printf}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	subject, err := Subject(event)
	if err != nil {
		return err
	}
	s.logf("notify user %d: %s", event.UserID, subject)
	return nil
}

// Subject renders the notification line for an event.
func Subject(event kafka.BookingEvent) (string, error) {
	switch event.Type {
	case kafka.EventHotelBookingCreated:
		return fmt.Sprintf("hotel booking #%d for room %s confirmed, %s to %s, total %s",
			event.BookingID, joinIDs(event.ResourceIDs), event.CheckIn, event.CheckOut, event.TotalPrice), nil
	case kafka.EventHotelBookingCancelled:
		return fmt.Sprintf("hotel booking #%d cancelled", event.BookingID), nil
	case kafka.EventFlightBookingCreated:
		return fmt.Sprintf("flight booking %s confirmed for %d passenger(s) on flight(s) %s, total %s",
			event.Reference, event.Units, joinIDs(event.ResourceIDs), event.TotalPrice), nil
	case kafka.EventFlightBookingCancelled:
		return fmt.Sprintf("flight booking %s cancelled", event.Reference), nil
	default:
		return "", fmt.Errorf("unknown event type %q", event.Type)
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ", ")
}
