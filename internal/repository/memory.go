package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// Memory keeps the catalog and bookings in process. Records live in append-only
// slices and their ids are assigned from the slice position at insertion.
type Memory struct {
	mu sync.RWMutex

	hotels  []domain.Hotel
	rooms   []domain.Room
	flights []domain.Flight

	hotelBookings  []domain.HotelBooking
	flightBookings []domain.FlightBooking

	byRoom   map[int64][]int
	byFlight map[int64][]int

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byRoom:   make(map[int64][]int),
		byFlight: make(map[int64][]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddHotel stores the hotel and returns it with its assigned id.
func (m *Memory) AddHotel(h domain.Hotel) domain.Hotel {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = int64(len(m.hotels) + 1)
	m.hotels = append(m.hotels, h)
	return h
}

// AddRoom stores the room under an existing hotel.
func (m *Memory) AddRoom(r domain.Room) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.HotelID < 1 || r.HotelID > int64(len(m.hotels)) {
		return domain.Room{}, notFound("hotel", r.HotelID)
	}
	hotel := m.hotels[r.HotelID-1]
	r.ID = int64(len(m.rooms) + 1)
	r.HotelName = hotel.Name
	r.City = hotel.City
	m.rooms = append(m.rooms, r)
	return r, nil
}

func (m *Memory) AddFlight(f domain.Flight) domain.Flight {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = int64(len(m.flights) + 1)
	m.flights = append(m.flights, f)
	return f
}

func (m *Memory) ListRooms(_ context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]domain.Room, 0)
	for _, r := range m.rooms {
		if MatchRoom(r, filter) {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (m *Memory) GetRoom(_ context.Context, id int64) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.rooms)) {
		return nil, notFound("room", id)
	}
	r := m.rooms[id-1]
	return &r, nil
}

func (m *Memory) ListFlights(_ context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flights := make([]domain.Flight, 0)
	for _, f := range m.flights {
		if MatchFlight(f, filter) {
			flights = append(flights, f)
		}
	}
	SortFlights(flights, filter.SortBy)
	return flights, nil
}

func (m *Memory) GetFlight(_ context.Context, id int64) (*domain.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.flights)) {
		return nil, notFound("flight", id)
	}
	f := m.flights[id-1]
	return &f, nil
}

func (m *Memory) RoomBookings(_ context.Context, roomID int64) ([]domain.HotelBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.byRoom[roomID]
	bookings := make([]domain.HotelBooking, 0, len(idx))
	for _, i := range idx {
		bookings = append(bookings, m.hotelBookings[i])
	}
	return bookings, nil
}

func (m *Memory) FlightBookings(_ context.Context, flightID int64) ([]domain.FlightBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.byFlight[flightID]
	bookings := make([]domain.FlightBooking, 0, len(idx))
	for _, i := range idx {
		bookings = append(bookings, copyFlightBooking(m.flightBookings[i]))
	}
	return bookings, nil
}

func (m *Memory) CreateHotelBooking(_ context.Context, booking *domain.HotelBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if booking.RoomID < 1 || booking.RoomID > int64(len(m.rooms)) {
		return notFound("room", booking.RoomID)
	}
	now := m.now()
	booking.ID = int64(len(m.hotelBookings) + 1)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	m.hotelBookings = append(m.hotelBookings, *booking)
	m.byRoom[booking.RoomID] = append(m.byRoom[booking.RoomID], len(m.hotelBookings)-1)
	return nil
}

func (m *Memory) CreateFlightBooking(_ context.Context, booking *domain.FlightBooking, reference ReferenceFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range booking.FlightIDs {
		if id < 1 || id > int64(len(m.flights)) {
			return notFound("flight", id)
		}
	}
	now := m.now()
	booking.ID = int64(len(m.flightBookings) + 1)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if reference != nil {
		booking.Reference = reference(booking.ID, now)
	}

	m.flightBookings = append(m.flightBookings, copyFlightBooking(*booking))
	pos := len(m.flightBookings) - 1
	for _, id := range booking.FlightIDs {
		m.byFlight[id] = append(m.byFlight[id], pos)
	}
	return nil
}

func (m *Memory) GetHotelBooking(_ context.Context, id int64) (*domain.HotelBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.hotelBookings)) {
		return nil, notFound("hotel_booking", id)
	}
	b := m.hotelBookings[id-1]
	return &b, nil
}

func (m *Memory) GetFlightBooking(_ context.Context, id int64) (*domain.FlightBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.flightBookings)) {
		return nil, notFound("flight_booking", id)
	}
	b := copyFlightBooking(m.flightBookings[id-1])
	return &b, nil
}

func (m *Memory) UpdateHotelBookingStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.HotelBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.hotelBookings)) {
		return nil, notFound("hotel_booking", id)
	}
	b := &m.hotelBookings[id-1]
	if b.Status != status {
		if !b.Status.CanTransitionTo(status) {
			return nil, invalidTransition("hotel_booking", id, b.Status, status)
		}
		b.Status = status
		b.UpdatedAt = m.now()
	}
	updated := *b
	return &updated, nil
}

func (m *Memory) UpdateFlightBookingStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.FlightBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.flightBookings)) {
		return nil, notFound("flight_booking", id)
	}
	b := &m.flightBookings[id-1]
	if b.Status != status {
		if !b.Status.CanTransitionTo(status) {
			return nil, invalidTransition("flight_booking", id, b.Status, status)
		}
		b.Status = status
		b.UpdatedAt = m.now()
	}
	updated := copyFlightBooking(*b)
	return &updated, nil
}

func (m *Memory) ListHotelBookings(_ context.Context, filter domain.BookingFilter) ([]domain.HotelBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]domain.HotelBooking, 0)
	for i := len(m.hotelBookings) - 1; i >= 0; i-- {
		b := m.hotelBookings[i]
		if matchBooking(b.UserID, b.Status, filter) {
			matched = append(matched, b)
		}
	}
	start, end := pageBounds(len(matched), filter.Offset, filter.Limit)
	return matched[start:end], nil
}

func (m *Memory) ListFlightBookings(_ context.Context, filter domain.BookingFilter) ([]domain.FlightBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]domain.FlightBooking, 0)
	for i := len(m.flightBookings) - 1; i >= 0; i-- {
		b := m.flightBookings[i]
		if matchBooking(b.UserID, b.Status, filter) {
			matched = append(matched, copyFlightBooking(b))
		}
	}
	start, end := pageBounds(len(matched), filter.Offset, filter.Limit)
	return matched[start:end], nil
}

// SortFlights orders flights by price or, by default, by departure time. Ties fall back to id.
func SortFlights(flights []domain.Flight, by domain.FlightSort) {
	sort.SliceStable(flights, func(i, j int) bool {
		a, b := flights[i], flights[j]
		if by == domain.FlightSortPrice && !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
		if !a.DepartureTime.Equal(b.DepartureTime) {
			return a.DepartureTime.Before(b.DepartureTime)
		}
		return a.ID < b.ID
	})
}

func copyFlightBooking(b domain.FlightBooking) domain.FlightBooking {
	b.FlightIDs = append([]int64(nil), b.FlightIDs...)
	return b
}

var (
	_ CatalogRepository = (*Memory)(nil)
	_ BookingRepository = (*Memory)(nil)
)
