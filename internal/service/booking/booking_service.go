package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/availability"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lock"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/shopspring/decimal"
)

type BookingUseCase interface {
	ReserveRoom(ctx context.Context, principal domain.Principal, input ReserveRoomInput) (*domain.HotelBooking, error)
	ReserveFlight(ctx context.Context, principal domain.Principal, input ReserveFlightInput) (*domain.FlightBooking, error)
	CancelHotelBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.HotelBooking, error)
	CancelFlightBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.FlightBooking, error)
	ListHotelBookings(ctx context.Context, principal domain.Principal, query BookingQuery) ([]domain.HotelBooking, error)
	ListFlightBookings(ctx context.Context, principal domain.Principal, query BookingQuery) ([]domain.FlightBooking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReserveRoomInput struct {
	RoomID     int64     `json:"room_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	GuestCount int       `json:"guest_count"`
}

type ReserveFlightInput struct {
	FlightIDs      []int64 `json:"flight_ids"`
	PassengerCount int     `json:"passenger_count"`
}

type BookingQuery struct {
	Status domain.BookingStatus
	Offset int
	Limit  int
}

// Limits are the business bounds checked before any lock is taken.
type Limits struct {
	MaxStayDays   int
	MaxPassengers int
	MinConnection time.Duration
}

func DefaultLimits() Limits {
	return Limits{MaxStayDays: 30, MaxPassengers: 10, MinConnection: time.Hour}
}

// BookingService is the only writer of bookings. Every reserve and cancel runs
// its availability check and its write under the locks of the resources it touches.
type BookingService struct {
	bookings           repository.BookingRepository
	catalog            repository.CatalogRepository
	index              *availability.Index
	locker             lock.Locker
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	limits             Limits
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLimits(limits Limits) BookingServiceOption {
	return func(s *BookingService) {
		s.limits = limits
	}
}

// WithClock replaces time.Now; "today" for date rules is the UTC day of the clock.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog repository.CatalogRepository,
	locker lock.Locker,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		catalog:      catalog,
		index:        availability.NewIndex(bookings),
		locker:       locker,
		producer:     producer,
		bookingTopic: bookingTopic,
		limits:       DefaultLimits(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) today() time.Time {
	return domain.TruncateDay(s.now())
}

func (s *BookingService) validateStay(stay domain.Stay) error {
	if err := stay.Validate(); err != nil {
		return err
	}
	if stay.Nights() > s.limits.MaxStayDays {
		return &domain.ValidationError{Field: "check_out", Reason: fmt.Sprintf("stay must not exceed %d nights", s.limits.MaxStayDays)}
	}
	if stay.CheckIn.Before(s.today()) {
		return &domain.ValidationError{Field: "check_in", Reason: "must not be in the past"}
	}
	return nil
}

func (s *BookingService) ReserveRoom(ctx context.Context, principal domain.Principal, input ReserveRoomInput) (*domain.HotelBooking, error) {
	if input.GuestCount < 1 {
		return nil, &domain.ValidationError{Field: "guest_count", Reason: "must be at least 1"}
	}
	stay := domain.NewStay(input.CheckIn, input.CheckOut)
	if err := s.validateStay(stay); err != nil {
		return nil, err
	}

	room, err := s.catalog.GetRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if input.GuestCount > room.Capacity {
		return nil, &domain.ValidationError{Field: "guest_count", Reason: fmt.Sprintf("room %d holds at most %d guests", room.ID, room.Capacity)}
	}

	unlock, err := s.acquire(ctx, lock.RoomKey(room.ID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	free, err := s.index.RoomIsFree(ctx, room.ID, stay)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, &domain.CapacityError{Kind: "room", ID: room.ID, Requested: 1}
	}

	booking := &domain.HotelBooking{
		RoomID:     room.ID,
		UserID:     principal.ID,
		Stay:       stay,
		GuestCount: input.GuestCount,
		TotalPrice: room.PricePerNight.Mul(decimal.NewFromInt(int64(stay.Nights()))),
		Status:     domain.BookingStatusConfirmed,
	}
	if err := s.bookings.CreateHotelBooking(ctx, booking); err != nil {
		return nil, err
	}
	unlock()

	s.publish(ctx, kafka.NewHotelBookingEvent(kafka.EventHotelBookingCreated, booking, s.now()))
	return booking, nil
}

func (s *BookingService) ReserveFlight(ctx context.Context, principal domain.Principal, input ReserveFlightInput) (*domain.FlightBooking, error) {
	if len(input.FlightIDs) == 0 {
		return nil, &domain.ValidationError{Field: "flight_ids", Reason: "must contain at least one flight"}
	}
	seen := make(map[int64]struct{}, len(input.FlightIDs))
	for _, id := range input.FlightIDs {
		if _, ok := seen[id]; ok {
			return nil, &domain.ValidationError{Field: "flight_ids", Reason: fmt.Sprintf("flight %d is listed twice", id)}
		}
		seen[id] = struct{}{}
	}
	if input.PassengerCount < 1 || input.PassengerCount > s.limits.MaxPassengers {
		return nil, &domain.ValidationError{Field: "passenger_count", Reason: fmt.Sprintf("must be between 1 and %d", s.limits.MaxPassengers)}
	}

	segments := make([]domain.Flight, 0, len(input.FlightIDs))
	for _, id := range input.FlightIDs {
		flight, err := s.catalog.GetFlight(ctx, id)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *flight)
	}
	if err := s.checkChain(segments); err != nil {
		return nil, err
	}

	keys := make([]lock.Key, 0, len(segments))
	for _, f := range segments {
		keys = append(keys, lock.FlightKey(f.ID))
	}
	unlock, err := s.acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	total := decimal.Zero
	for _, f := range segments {
		available, err := s.index.FlightSeatsAvailable(ctx, f)
		if err != nil {
			s.logFault(err)
			return nil, err
		}
		if available < input.PassengerCount {
			return nil, &domain.CapacityError{Kind: "flight", ID: f.ID, Requested: input.PassengerCount, Available: available}
		}
		total = total.Add(f.Price.Mul(decimal.NewFromInt(int64(input.PassengerCount))))
	}

	booking := &domain.FlightBooking{
		FlightIDs:      append([]int64(nil), input.FlightIDs...),
		UserID:         principal.ID,
		PassengerCount: input.PassengerCount,
		TotalPrice:     total,
		Status:         domain.BookingStatusConfirmed,
	}
	if err := s.bookings.CreateFlightBooking(ctx, booking, ReferenceCode); err != nil {
		return nil, err
	}
	unlock()

	s.publish(ctx, kafka.NewFlightBookingEvent(kafka.EventFlightBookingCreated, booking, s.now()))
	return booking, nil
}

// checkChain requires each segment to depart from the previous arrival city
// no sooner than the minimum connection time after landing.
func (s *BookingService) checkChain(segments []domain.Flight) error {
	for i := 1; i < len(segments); i++ {
		prev, next := segments[i-1], segments[i]
		if !strings.EqualFold(prev.ArrivalCity, next.DepartureCity) {
			return &domain.ValidationError{Field: "flight_ids", Reason: fmt.Sprintf("flight %d does not depart from %s", next.ID, prev.ArrivalCity)}
		}
		if next.DepartureTime.Before(prev.ArrivalTime().Add(s.limits.MinConnection)) {
			return &domain.ValidationError{Field: "flight_ids", Reason: fmt.Sprintf("connection to flight %d is shorter than %s", next.ID, s.limits.MinConnection)}
		}
	}
	return nil
}

// ReferenceCode renders FL, the zero-padded booking id and the creation time in base 36.
func ReferenceCode(id int64, createdAt time.Time) string {
	return fmt.Sprintf("FL%06d%s", id, strings.ToUpper(strconv.FormatInt(createdAt.Unix(), 36)))
}

func (s *BookingService) CancelHotelBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.HotelBooking, error) {
	current, err := s.bookings.GetHotelBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanCancel(principal, current.UserID) {
		log.Printf("principal %d denied cancel of hotel booking %d", principal.ID, id)
		return nil, &domain.ForbiddenError{PrincipalID: principal.ID, Kind: "hotel_booking", ID: id}
	}

	unlock, err := s.acquire(ctx, lock.RoomKey(current.RoomID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err = s.bookings.GetHotelBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}
	if !current.Stay.CheckIn.After(s.today()) {
		return nil, &domain.ValidationError{Field: "check_in", Reason: "a booking that has already started cannot be cancelled"}
	}

	updated, err := s.bookings.UpdateHotelBookingStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	unlock()

	s.publish(ctx, kafka.NewHotelBookingEvent(kafka.EventHotelBookingCancelled, updated, s.now()))
	return updated, nil
}

func (s *BookingService) CancelFlightBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.FlightBooking, error) {
	current, err := s.bookings.GetFlightBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanCancel(principal, current.UserID) {
		log.Printf("principal %d denied cancel of flight booking %d", principal.ID, id)
		return nil, &domain.ForbiddenError{PrincipalID: principal.ID, Kind: "flight_booking", ID: id}
	}

	keys := make([]lock.Key, 0, len(current.FlightIDs))
	for _, flightID := range current.FlightIDs {
		keys = append(keys, lock.FlightKey(flightID))
	}
	unlock, err := s.acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err = s.bookings.GetFlightBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	updated, err := s.bookings.UpdateFlightBookingStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	unlock()

	s.publish(ctx, kafka.NewFlightBookingEvent(kafka.EventFlightBookingCancelled, updated, s.now()))
	return updated, nil
}

func (s *BookingService) bookingFilter(principal domain.Principal, query BookingQuery) (domain.BookingFilter, error) {
	if query.Status != "" && !query.Status.Valid() {
		return domain.BookingFilter{}, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", query.Status)}
	}
	if query.Offset < 0 || query.Limit < 0 {
		return domain.BookingFilter{}, &domain.ValidationError{Field: "offset", Reason: "offset and limit must not be negative"}
	}
	return domain.BookingFilter{
		UserID: policy.OwnerScope(principal),
		Status: query.Status,
		Offset: query.Offset,
		Limit:  query.Limit,
	}, nil
}

func (s *BookingService) ListHotelBookings(ctx context.Context, principal domain.Principal, query BookingQuery) ([]domain.HotelBooking, error) {
	filter, err := s.bookingFilter(principal, query)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListHotelBookings(ctx, filter)
}

func (s *BookingService) ListFlightBookings(ctx context.Context, principal domain.Principal, query BookingQuery) ([]domain.FlightBooking, error) {
	filter, err := s.bookingFilter(principal, query)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListFlightBookings(ctx, filter)
}

// acquire takes the keys in global order. The returned release is idempotent,
// so callers may release early and still defer it.
func (s *BookingService) acquire(ctx context.Context, keys ...lock.Key) (func(), error) {
	release, err := lock.AcquireAll(ctx, s.locker, keys...)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			log.Printf("lock wait exceeded: %v", err)
		}
		return nil, err
	}
	released := false
	return func() {
		if !released {
			released = true
			release()
		}
	}, nil
}

func (s *BookingService) logFault(err error) {
	if errors.Is(err, domain.ErrConsistency) {
		log.Printf("CONSISTENCY FAULT: %v", err)
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.BookingEvent) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.Key(), event); err != nil {
		log.Printf("WARNING: failed to publish %s for booking %d: %v", event.Type, event.BookingID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %d: %v", event.Type, event.BookingID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
