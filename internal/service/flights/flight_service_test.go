package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
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

var searchDay = domain.Date(2024, time.January, 15)

func newSampleService(t *testing.T, opts ...FlightServiceOption) (*FlightService, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	require.NoError(t, store.Load(repository.SampleCatalog()))
	return NewFlightService(store, store, opts...), store
}

func numbers(route domain.RouteOption) []string {
	out := make([]string, 0, len(route.Segments))
	for _, s := range route.Segments {
		out = append(out, s.Number)
	}
	return out
}

func findRoute(routes []domain.RouteOption, flightNumbers ...string) (domain.RouteOption, bool) {
	for _, r := range routes {
		if assert.ObjectsAreEqual(flightNumbers, numbers(r)) {
			return r, true
		}
	}
	return domain.RouteOption{}, false
}

func route(id int64, price int64, minutes int) domain.RouteOption {
	dep := searchDay.Add(8 * time.Hour)
	return domain.RouteOption{
		Segments:      []domain.Flight{{ID: id, DepartureTime: dep, Duration: time.Duration(minutes) * time.Minute}},
		TotalPrice:    decimal.NewFromInt(price),
		TotalDuration: time.Duration(minutes) * time.Minute,
	}
}

func TestRankRoutes_CheapestAndFastest(t *testing.T) {
	routes := rankRoutes([]domain.RouteOption{
		route(1, 100, 60),
		route(2, 150, 40),
		route(3, 100, 40),
	}, RouteSortPrice)

	require.Len(t, routes, 3)
	assert.Equal(t, []int64{3}, routes[0].FlightIDs())
	assert.True(t, routes[0].IsCheapest)
	assert.True(t, routes[0].IsFastest)

	cheapest, fastest := 0, 0
	for _, r := range routes {
		if r.IsCheapest {
			cheapest++
		}
		if r.IsFastest {
			fastest++
		}
	}
	assert.Equal(t, 1, cheapest)
	assert.Equal(t, 1, fastest)
}

func TestRankRoutes_Ordering(t *testing.T) {
	input := func() []domain.RouteOption {
		return []domain.RouteOption{route(1, 100, 60), route(2, 150, 40), route(3, 100, 40)}
	}

	byPrice := rankRoutes(input(), "")
	assert.Equal(t, []int64{3, 1, 2}, []int64{byPrice[0].FlightIDs()[0], byPrice[1].FlightIDs()[0], byPrice[2].FlightIDs()[0]})

	byDuration := rankRoutes(input(), RouteSortDuration)
	assert.Equal(t, []int64{3, 2, 1}, []int64{byDuration[0].FlightIDs()[0], byDuration[1].FlightIDs()[0], byDuration[2].FlightIDs()[0]})
}

func TestRankRoutes_SingleAndEmpty(t *testing.T) {
	single := rankRoutes([]domain.RouteOption{route(1, 100, 60)}, RouteSortPrice)
	require.Len(t, single, 1)
	assert.True(t, single[0].IsCheapest)
	assert.True(t, single[0].IsFastest)

	empty := rankRoutes(nil, RouteSortPrice)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRankRoutes_TieBreaksAreDeterministic(t *testing.T) {
	a := route(5, 100, 60)
	b := route(2, 100, 60)
	routes := rankRoutes([]domain.RouteOption{a, b}, RouteSortPrice)
	assert.Equal(t, int64(2), routes[0].FlightIDs()[0])
	assert.True(t, routes[0].IsCheapest)
	assert.True(t, routes[0].IsFastest)
}

func TestSearch_MoscowToSochi(t *testing.T) {
	service, _ := newSampleService(t)

	routes, err := service.Search(context.Background(), RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1})
	require.NoError(t, err)
	require.Len(t, routes, 6)

	direct, ok := findRoute(routes, "SU300")
	require.True(t, ok)
	assert.True(t, direct.IsFastest)
	assert.Equal(t, 0, direct.Stops)
	assert.Equal(t, 150*time.Minute, direct.TotalDuration)

	oneStop, ok := findRoute(routes, "SU100", "SU200")
	require.True(t, ok)
	assert.Equal(t, 1, oneStop.Stops)
	assert.Equal(t, []string{"St. Petersburg"}, oneStop.ConnectionCities)
	assert.Equal(t, 90*time.Minute, oneStop.Layover)
	assert.Equal(t, 6*time.Hour, oneStop.TotalDuration)
	assert.True(t, oneStop.TotalPrice.Equal(decimal.NewFromInt(180)))

	assert.Equal(t, []string{"SU300"}, numbers(routes[0]))
	assert.True(t, routes[0].IsCheapest)
}

func TestSearch_PriceScalesWithPassengers(t *testing.T) {
	service, _ := newSampleService(t)

	routes, err := service.Search(context.Background(), RouteQuery{From: "moscow", To: "SOCHI", Date: searchDay, Passengers: 3})
	require.NoError(t, err)
	r, ok := findRoute(routes, "SU150", "SU250")
	require.True(t, ok)
	assert.True(t, r.TotalPrice.Equal(decimal.NewFromInt(540)))
}

func TestSearch_ViaExcludesDirect(t *testing.T) {
	service, _ := newSampleService(t)

	routes, err := service.Search(context.Background(), RouteQuery{From: "Moscow", To: "Sochi", Via: "St. Petersburg", Date: searchDay, Passengers: 1})
	require.NoError(t, err)
	require.Len(t, routes, 4)
	for _, r := range routes {
		assert.Equal(t, 1, r.Stops)
		assert.Equal(t, []string{"St. Petersburg"}, r.ConnectionCities)
	}

	routes, err = service.Search(context.Background(), RouteQuery{From: "Moscow", To: "Sochi", Via: "Kazan", Date: searchDay, Passengers: 1})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestSearch_ConnectionWindow(t *testing.T) {
	service, _ := newSampleService(t, WithConnectionWindow(90*time.Minute, 24*time.Hour))

	routes, err := service.Search(context.Background(), RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1})
	require.NoError(t, err)

	_, ok := findRoute(routes, "SU150", "SU200")
	assert.False(t, ok, "a 60 minute connection is below the minimum")
	_, ok = findRoute(routes, "SU100", "SU200")
	assert.True(t, ok, "a 90 minute connection is exactly the minimum")

	service, _ = newSampleService(t, WithConnectionWindow(time.Hour, 2*time.Hour))
	routes, err = service.Search(context.Background(), RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1})
	require.NoError(t, err)
	_, ok = findRoute(routes, "SU100", "SU250")
	assert.False(t, ok, "a 150 minute layover exceeds the maximum")
}

func TestSearch_SkipsFlightsWithoutSeats(t *testing.T) {
	service, store := newSampleService(t)
	ctx := context.Background()

	// SU200 is flight 2 with 180 seats
	require.NoError(t, store.CreateFlightBooking(ctx, &domain.FlightBooking{
		FlightIDs:      []int64{2},
		UserID:         1,
		PassengerCount: 179,
		Status:         domain.BookingStatusConfirmed,
	}, nil))

	routes, err := service.Search(ctx, RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 2})
	require.NoError(t, err)
	for _, r := range routes {
		assert.NotContains(t, numbers(r), "SU200")
	}
	assert.Len(t, routes, 4)

	routes, err = service.Search(ctx, RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1})
	require.NoError(t, err)
	assert.Len(t, routes, 6)
}

func TestSearch_DateOnlyMatch(t *testing.T) {
	service, _ := newSampleService(t)
	ctx := context.Background()

	routes, err := service.Search(ctx, RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay.Add(23 * time.Hour), Passengers: 1})
	require.NoError(t, err)
	assert.Len(t, routes, 6)

	routes, err = service.Search(ctx, RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay.AddDate(0, 0, 1), Passengers: 1})
	require.NoError(t, err)
	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestSearch_Validation(t *testing.T) {
	service, _ := newSampleService(t)

	testCases := []struct {
		name  string
		query RouteQuery
	}{
		{"missing from", RouteQuery{To: "Sochi", Date: searchDay, Passengers: 1}},
		{"missing to", RouteQuery{From: "Moscow", Date: searchDay, Passengers: 1}},
		{"same city", RouteQuery{From: "Moscow", To: "moscow", Date: searchDay, Passengers: 1}},
		{"no passengers", RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay}},
		{"no date", RouteQuery{From: "Moscow", To: "Sochi", Passengers: 1}},
		{"via equals destination", RouteQuery{From: "Moscow", To: "Sochi", Via: "Sochi", Date: searchDay, Passengers: 1}},
		{"unknown sort", RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1, SortBy: "comfort"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Search(context.Background(), tc.query)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFlightService_ListAndGet(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewFlightService(catalog, repository.NewMemory())
	ctx := context.Background()

	filter := domain.FlightFilter{DepartureCity: "Moscow", SortBy: domain.FlightSortPrice}
	catalog.On("ListFlights", ctx, filter).Return([]domain.Flight{{ID: 1, Number: "SU100"}}, nil).Once()
	catalog.On("GetFlight", ctx, int64(9)).Return(nil, &domain.NotFoundError{Kind: "flight", ID: 9}).Once()

	flights, err := service.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, flights, 1)

	_, err = service.GetByID(ctx, 9)
	assert.True(t, domain.IsNotFound(err))

	_, err = service.List(ctx, domain.FlightFilter{SortBy: "seats"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	catalog.AssertExpectations(t)
}

func TestSearch_CatalogFailure(t *testing.T) {
	catalog := &MockCatalog{}
	service := NewFlightService(catalog, repository.NewMemory())
	ctx := context.Background()

	catalog.On("ListFlights", ctx, mock.Anything).Return(nil, errors.New("timeout")).Once()

	_, err := service.Search(ctx, RouteQuery{From: "Moscow", To: "Sochi", Date: searchDay, Passengers: 1})
	assert.Error(t, err)
	catalog.AssertExpectations(t)
}
