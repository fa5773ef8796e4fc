package rooms

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/travelbooking/internal/availability"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type RoomUseCase interface {
	ListRooms(ctx context.Context, query RoomQuery) (Result, error)
	SearchByDates(ctx context.Context, query DateQuery) (Result, error)
	SearchByDuration(ctx context.Context, query DurationQuery) (Result, error)
}

// Page selects a window of a result. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

type RoomQuery struct {
	Filter      domain.RoomFilter
	SortByPrice bool
	Page        Page
}

type DateQuery struct {
	Filter      domain.RoomFilter
	CheckIn     time.Time
	CheckOut    time.Time
	SortByPrice bool
	Page        Page
}

type DurationQuery struct {
	Filter      domain.RoomFilter
	Start       time.Time
	Days        int
	SortByPrice bool
	Page        Page
}

// Result is one page of rooms. Total counts every match before paging.
type Result struct {
	Rooms []domain.Room `json:"rooms"`
	Total int           `json:"total"`
}

type RoomService struct {
	catalog     repository.CatalogRepository
	index       *availability.Index
	maxStayDays int
	now         func() time.Time
}

type RoomServiceOption func(*RoomService)

func WithMaxStayDays(days int) RoomServiceOption {
	return func(s *RoomService) {
		s.maxStayDays = days
	}
}

func WithClock(now func() time.Time) RoomServiceOption {
	return func(s *RoomService) {
		s.now = now
	}
}

func NewRoomService(catalog repository.CatalogRepository, bookings availability.BookingReader, opts ...RoomServiceOption) *RoomService {
	s := &RoomService{
		catalog:     catalog,
		index:       availability.NewIndex(bookings),
		maxStayDays: 30,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) ListRooms(ctx context.Context, query RoomQuery) (Result, error) {
	if err := validateFilter(query.Filter); err != nil {
		return Result{}, err
	}
	rooms, err := s.catalog.ListRooms(ctx, query.Filter)
	if err != nil {
		return Result{}, err
	}
	return paginate(sortRooms(rooms, query.SortByPrice), query.Page), nil
}

// SearchByDates returns the rooms matching the filter that have no live
// booking overlapping [CheckIn, CheckOut). It never takes a lock, so the answer
// may be stale by the time a reservation is attempted.
func (s *RoomService) SearchByDates(ctx context.Context, query DateQuery) (Result, error) {
	if query.CheckIn.IsZero() {
		return Result{}, &domain.ValidationError{Field: "check_in", Reason: "is required"}
	}
	if query.CheckOut.IsZero() {
		return Result{}, &domain.ValidationError{Field: "check_out", Reason: "is required"}
	}
	stay := domain.NewStay(query.CheckIn, query.CheckOut)
	if err := stay.Validate(); err != nil {
		return Result{}, err
	}
	if stay.Nights() > s.maxStayDays {
		return Result{}, &domain.ValidationError{Field: "check_out", Reason: fmt.Sprintf("stay must not exceed %d nights", s.maxStayDays)}
	}
	if stay.CheckIn.Before(domain.TruncateDay(s.now())) {
		return Result{}, &domain.ValidationError{Field: "check_in", Reason: "must not be in the past"}
	}
	if err := validateFilter(query.Filter); err != nil {
		return Result{}, err
	}

	candidates, err := s.catalog.ListRooms(ctx, query.Filter)
	if err != nil {
		return Result{}, err
	}

	free := make([]domain.Room, 0, len(candidates))
	for _, room := range candidates {
		ok, err := s.index.RoomIsFree(ctx, room.ID, stay)
		if err != nil {
			return Result{}, err
		}
		if ok {
			free = append(free, room)
		}
	}
	return paginate(sortRooms(free, query.SortByPrice), query.Page), nil
}

// SearchByDuration is SearchByDates over [Start, Start+Days).
func (s *RoomService) SearchByDuration(ctx context.Context, query DurationQuery) (Result, error) {
	if query.Start.IsZero() {
		return Result{}, &domain.ValidationError{Field: "start_date", Reason: "is required"}
	}
	if query.Days < 1 || query.Days > s.maxStayDays {
		return Result{}, &domain.ValidationError{Field: "days", Reason: fmt.Sprintf("must be between 1 and %d", s.maxStayDays)}
	}
	stay := domain.StayFor(query.Start, query.Days)
	return s.SearchByDates(ctx, DateQuery{
		Filter:      query.Filter,
		CheckIn:     stay.CheckIn,
		CheckOut:    stay.CheckOut,
		SortByPrice: query.SortByPrice,
		Page:        query.Page,
	})
}

func validateFilter(f domain.RoomFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return &domain.ValidationError{Field: "room_type", Reason: fmt.Sprintf("unknown room type %q", f.Type)}
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return &domain.ValidationError{Field: "min_price", Reason: "must not be negative"}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return &domain.ValidationError{Field: "max_price", Reason: "must not be below min_price"}
	}
	if f.MinCapacity < 0 {
		return &domain.ValidationError{Field: "capacity", Reason: "must not be negative"}
	}
	return nil
}

// sortRooms orders by id, or by nightly price with ties broken by id.
func sortRooms(rooms []domain.Room, byPrice bool) []domain.Room {
	sort.SliceStable(rooms, func(i, j int) bool {
		if byPrice && !rooms[i].PricePerNight.Equal(rooms[j].PricePerNight) {
			return rooms[i].PricePerNight.LessThan(rooms[j].PricePerNight)
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

func paginate(rooms []domain.Room, page Page) Result {
	total := len(rooms)
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Result{Rooms: []domain.Room{}, Total: total}
	}
	end := total
	if page.Limit > 0 && offset+page.Limit < total {
		end = offset + page.Limit
	}
	return Result{Rooms: rooms[offset:end], Total: total}
}

var _ RoomUseCase = (*RoomService)(nil)
