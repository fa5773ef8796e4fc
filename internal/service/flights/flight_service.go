package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/availability"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/shopspring/decimal"
)

type FlightUseCase interface {
	List(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, query RouteQuery) ([]domain.RouteOption, error)
}

type RouteSort string

const (
	RouteSortPrice     RouteSort = "price"
	RouteSortDuration  RouteSort = "duration"
	RouteSortDeparture RouteSort = "departure"
)

// RouteQuery asks for itineraries From -> To leaving on the calendar day of
// Date (UTC). A non-empty Via restricts the search to one-stop routes through that city.
type RouteQuery struct {
	From       string
	To         string
	Date       time.Time
	Passengers int
	Via        string
	SortBy     RouteSort
}

type FlightService struct {
	catalog       repository.CatalogRepository
	index         *availability.Index
	minConnection time.Duration
	maxLayover    time.Duration
}

type FlightServiceOption func(*FlightService)

// WithConnectionWindow bounds the ground time between the legs of a one-stop route.
func WithConnectionWindow(minConnection, maxLayover time.Duration) FlightServiceOption {
	return func(s *FlightService) {
		s.minConnection = minConnection
		s.maxLayover = maxLayover
	}
}

func NewFlightService(catalog repository.CatalogRepository, bookings availability.BookingReader, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		catalog:       catalog,
		index:         availability.NewIndex(bookings),
		minConnection: time.Hour,
		maxLayover:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) List(ctx context.Context, filter domain.FlightFilter) ([]domain.Flight, error) {
	switch filter.SortBy {
	case "", domain.FlightSortDeparture, domain.FlightSortPrice:
	default:
		return nil, &domain.ValidationError{Field: "sort_by", Reason: fmt.Sprintf("unknown sort %q", filter.SortBy)}
	}
	return s.catalog.ListFlights(ctx, filter)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.catalog.GetFlight(ctx, id)
}

func (q RouteQuery) validate() error {
	if strings.TrimSpace(q.From) == "" {
		return &domain.ValidationError{Field: "from", Reason: "is required"}
	}
	if strings.TrimSpace(q.To) == "" {
		return &domain.ValidationError{Field: "to", Reason: "is required"}
	}
	if strings.EqualFold(q.From, q.To) {
		return &domain.ValidationError{Field: "to", Reason: "must differ from departure city"}
	}
	if q.Via != "" && (strings.EqualFold(q.Via, q.From) || strings.EqualFold(q.Via, q.To)) {
		return &domain.ValidationError{Field: "via", Reason: "must differ from departure and arrival cities"}
	}
	if q.Date.IsZero() {
		return &domain.ValidationError{Field: "date", Reason: "is required"}
	}
	if q.Passengers < 1 {
		return &domain.ValidationError{Field: "passengers", Reason: "must be at least 1"}
	}
	switch q.SortBy {
	case "", RouteSortPrice, RouteSortDuration, RouteSortDeparture:
	default:
		return &domain.ValidationError{Field: "sort_by", Reason: fmt.Sprintf("unknown sort %q", q.SortBy)}
	}
	return nil
}

// Search composes direct and one-stop itineraries that have seats for the whole
// party on every leg, marks the cheapest and the fastest and orders the rest.
// Seat counts are read once per flight per search and are not locked.
func (s *FlightService) Search(ctx context.Context, query RouteQuery) ([]domain.RouteOption, error) {
	if err := query.validate(); err != nil {
		return nil, err
	}

	day := domain.TruncateDay(query.Date)
	firstLegs, err := s.catalog.ListFlights(ctx, domain.FlightFilter{
		DepartureCity: query.From,
		DepartureFrom: day,
		DepartureTo:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}

	seats := make(map[int64]int)
	hasSeats := func(f domain.Flight) (bool, error) {
		available, ok := seats[f.ID]
		if !ok {
			var err error
			available, err = s.index.FlightSeatsAvailable(ctx, f)
			if err != nil {
				return false, err
			}
			seats[f.ID] = available
		}
		return available >= query.Passengers, nil
	}

	var routes []domain.RouteOption

	if query.Via == "" {
		for _, f := range firstLegs {
			if !strings.EqualFold(f.ArrivalCity, query.To) {
				continue
			}
			ok, err := hasSeats(f)
			if err != nil {
				return nil, err
			}
			if ok {
				routes = append(routes, buildRoute(query.Passengers, f))
			}
		}
	}

	var connecting []domain.Flight
	for _, f := range firstLegs {
		if strings.EqualFold(f.ArrivalCity, query.To) || strings.EqualFold(f.ArrivalCity, query.From) {
			continue
		}
		if query.Via != "" && !strings.EqualFold(f.ArrivalCity, query.Via) {
			continue
		}
		connecting = append(connecting, f)
	}

	if len(connecting) > 0 {
		secondLegs, err := s.catalog.ListFlights(ctx, domain.FlightFilter{
			ArrivalCity:   query.To,
			DepartureFrom: day,
		})
		if err != nil {
			return nil, err
		}

		for _, first := range connecting {
			earliest := first.ArrivalTime().Add(s.minConnection)
			latest := first.ArrivalTime().Add(s.maxLayover)
			for _, second := range secondLegs {
				if !strings.EqualFold(second.DepartureCity, first.ArrivalCity) {
					continue
				}
				if second.DepartureTime.Before(earliest) || second.DepartureTime.After(latest) {
					continue
				}
				ok, err := hasSeats(first)
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				if ok, err = hasSeats(second); err != nil {
					return nil, err
				}
				if ok {
					routes = append(routes, buildRoute(query.Passengers, first, second))
				}
			}
		}
	}

	return rankRoutes(routes, query.SortBy), nil
}

func buildRoute(passengers int, segments ...domain.Flight) domain.RouteOption {
	total := decimal.Zero
	for _, f := range segments {
		total = total.Add(f.Price.Mul(decimal.NewFromInt(int64(passengers))))
	}
	first, last := segments[0], segments[len(segments)-1]

	route := domain.RouteOption{
		Segments:         segments,
		TotalPrice:       total,
		TotalDuration:    last.ArrivalTime().Sub(first.DepartureTime),
		ConnectionCities: []string{},
		Stops:            len(segments) - 1,
	}
	for i := 1; i < len(segments); i++ {
		route.Layover += segments[i].DepartureTime.Sub(segments[i-1].ArrivalTime())
		route.ConnectionCities = append(route.ConnectionCities, segments[i-1].ArrivalCity)
	}
	return route
}
