package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockCatalog) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockCatalog) ListFlights(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCatalog) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type memoryStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func TestCachedCatalog_ListFlightsHitsOriginOnce(t *testing.T) {
	origin := &MockCatalog{}
	store := newMemoryStore()
	catalog := NewCachedCatalog(origin, store, time.Minute)
	ctx := context.Background()

	filter := domain.FlightFilter{DepartureCity: "Moscow"}
	flights := []domain.Flight{{
		ID:            1,
		Number:        "SU100",
		DepartureCity: "Moscow",
		ArrivalCity:   "Sochi",
		DepartureTime: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		Duration:      150 * time.Minute,
		TotalSeats:    180,
		Price:         decimal.NewFromInt(120),
	}}
	origin.On("ListFlights", ctx, filter).Return(flights, nil).Once()

	first, err := catalog.ListFlights(ctx, filter)
	require.NoError(t, err)
	second, err := catalog.ListFlights(ctx, filter)
	require.NoError(t, err)

	assert.Equal(t, first[0].Number, second[0].Number)
	assert.True(t, first[0].DepartureTime.Equal(second[0].DepartureTime))
	assert.Equal(t, 150*time.Minute, second[0].Duration)
	assert.True(t, second[0].Price.Equal(decimal.NewFromInt(120)))
	origin.AssertExpectations(t)
}

func TestCachedCatalog_ErrorsAreNotCached(t *testing.T) {
	origin := &MockCatalog{}
	store := newMemoryStore()
	catalog := NewCachedCatalog(origin, store, time.Minute)
	ctx := context.Background()

	origin.On("GetRoom", ctx, int64(9)).Return(nil, &domain.NotFoundError{Kind: "room", ID: 9}).Twice()

	_, err := catalog.GetRoom(ctx, 9)
	assert.True(t, domain.IsNotFound(err))
	_, err = catalog.GetRoom(ctx, 9)
	assert.True(t, domain.IsNotFound(err))

	assert.Empty(t, store.data)
	origin.AssertExpectations(t)
}

func TestCachedCatalog_StoreFailureFallsBackToOrigin(t *testing.T) {
	origin := &MockCatalog{}
	store := newMemoryStore()
	store.getErr = errors.New("redis down")
	catalog := NewCachedCatalog(origin, store, time.Minute)
	ctx := context.Background()

	room := &domain.Room{ID: 3, Number: "201", PricePerNight: decimal.NewFromInt(80), Capacity: 2}
	origin.On("GetRoom", ctx, int64(3)).Return(room, nil).Once()

	got, err := catalog.GetRoom(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "201", got.Number)
	origin.AssertExpectations(t)
}
