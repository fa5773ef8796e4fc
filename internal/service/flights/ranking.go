package flights

import (
	"sort"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// comparison returns <0, 0 or >0.
type comparison func(a, b domain.RouteOption) int

func byPrice(a, b domain.RouteOption) int {
	return a.TotalPrice.Cmp(b.TotalPrice)
}

func byDuration(a, b domain.RouteOption) int {
	return cmpInt64(int64(a.TotalDuration), int64(b.TotalDuration))
}

func byStops(a, b domain.RouteOption) int {
	return cmpInt64(int64(a.Stops), int64(b.Stops))
}

func byDeparture(a, b domain.RouteOption) int {
	return a.DepartureTime().Compare(b.DepartureTime())
}

// bySegmentIDs compares the segment id sequences, first segment first.
func bySegmentIDs(a, b domain.RouteOption) int {
	ai, bi := a.FlightIDs(), b.FlightIDs()
	for i := 0; i < len(ai) && i < len(bi); i++ {
		if c := cmpInt64(ai[i], bi[i]); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(ai)), int64(len(bi)))
}

func chain(cmps ...comparison) comparison {
	return func(a, b domain.RouteOption) int {
		for _, cmp := range cmps {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

var (
	cheapestOrder  = chain(byPrice, byDuration, byStops, byDeparture, bySegmentIDs)
	fastestOrder   = chain(byDuration, byPrice, byStops, byDeparture, bySegmentIDs)
	departureOrder = chain(byDeparture, byPrice, byDuration, byStops, bySegmentIDs)
)

// rankRoutes flags exactly one cheapest and one fastest route and sorts the
// result. An empty input yields an empty, non-nil slice.
func rankRoutes(routes []domain.RouteOption, sortBy RouteSort) []domain.RouteOption {
	if len(routes) == 0 {
		return []domain.RouteOption{}
	}

	cheapest, fastest := 0, 0
	for i := range routes {
		routes[i].IsCheapest, routes[i].IsFastest = false, false
		if cheapestOrder(routes[i], routes[cheapest]) < 0 {
			cheapest = i
		}
		if fastestOrder(routes[i], routes[fastest]) < 0 {
			fastest = i
		}
	}
	routes[cheapest].IsCheapest = true
	routes[fastest].IsFastest = true

	order := cheapestOrder
	switch sortBy {
	case RouteSortDuration:
		order = fastestOrder
	case RouteSortDeparture:
		order = departureOrder
	}
	sort.SliceStable(routes, func(i, j int) bool { return order(routes[i], routes[j]) < 0 })
	return routes
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
