package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Flight struct {
	ID            int64           `json:"id"`
	Number        string          `json:"flight_number"`
	Airline       string          `json:"airline"`
	DepartureCity string          `json:"departure_city"`
	ArrivalCity   string          `json:"arrival_city"`
	DepartureTime time.Time       `json:"departure_time"`
	Duration      time.Duration   `json:"duration"`
	TotalSeats    int             `json:"total_seats"`
	Price         decimal.Decimal `json:"price"`
}

func (f Flight) ArrivalTime() time.Time {
	return f.DepartureTime.Add(f.Duration)
}

type FlightSort string

const (
	FlightSortDeparture FlightSort = "departure"
	FlightSortPrice     FlightSort = "price"
)

// FlightFilter narrows the flight catalog. Cities match case-insensitively;
// a zero DepartureFrom/DepartureTo leaves that bound open.
type FlightFilter struct {
	DepartureCity string
	ArrivalCity   string
	DepartureFrom time.Time
	DepartureTo   time.Time
	SortBy        FlightSort
}

// RouteOption is an itinerary of one or two segments built for a single search.
type RouteOption struct {
	Segments         []Flight        `json:"segments"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	TotalDuration    time.Duration   `json:"total_duration"`
	Layover          time.Duration   `json:"layover"`
	ConnectionCities []string        `json:"connection_cities"`
	Stops            int             `json:"stops"`
	IsCheapest       bool            `json:"is_cheapest"`
	IsFastest        bool            `json:"is_fastest"`
}

func (r RouteOption) DepartureTime() time.Time {
	if len(r.Segments) == 0 {
		return time.Time{}
	}
	return r.Segments[0].DepartureTime
}

func (r RouteOption) FlightIDs() []int64 {
	ids := make([]int64, 0, len(r.Segments))
	for _, s := range r.Segments {
		ids = append(ids, s.ID)
	}
	return ids
}
