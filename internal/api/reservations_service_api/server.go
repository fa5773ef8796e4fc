package reservations_service_api

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/flights"
	"github.com/Domenick1991/travelbooking/internal/service/rooms"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// SearchRoomsRequest lists the catalog when no dates are given, searches
// [CheckIn, CheckOut) when both are set and [StartDate, StartDate+Days) otherwise.
type SearchRoomsRequest struct {
	HotelID     int64            `json:"hotel_id,omitempty"`
	City        string           `json:"city,omitempty"`
	RoomType    string           `json:"room_type,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	Capacity    int              `json:"capacity,omitempty"`
	CheckIn     string           `json:"check_in,omitempty"`
	CheckOut    string           `json:"check_out,omitempty"`
	StartDate   string           `json:"start_date,omitempty"`
	Days        int              `json:"days,omitempty"`
	SortByPrice bool             `json:"sort_by_price,omitempty"`
	Offset      int              `json:"offset,omitempty"`
	Limit       int              `json:"limit,omitempty"`
}

type SearchRoutesRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Date       string `json:"date"`
	Passengers int    `json:"passengers"`
	Via        string `json:"via,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
}

type SearchRoutesResponse struct {
	Routes []domain.RouteOption `json:"routes"`
	Total  int                  `json:"total"`
}

type ReserveRoomRequest struct {
	RoomID     int64  `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
}

type ReserveFlightRequest struct {
	FlightIDs      []int64 `json:"flight_ids"`
	PassengerCount int     `json:"passenger_count"`
}

type CancelRequest struct {
	ID int64 `json:"id"`
}

type Authenticator interface {
	FromHeader(header string) (domain.Principal, error)
}

// Server implements ReservationsServer on top of the service layer.
type Server struct {
	rooms         rooms.RoomUseCase
	flights       flights.FlightUseCase
	bookings      booking.BookingUseCase
	authenticator Authenticator
}

func NewServer(roomSvc rooms.RoomUseCase, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, authenticator Authenticator) *Server {
	return &Server{
		rooms:         roomSvc,
		flights:       flightSvc,
		bookings:      bookingSvc,
		authenticator: authenticator,
	}
}

func (s *Server) principal(ctx context.Context) (domain.Principal, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return domain.Principal{}, toStatus(auth.ErrUnauthenticated)
	}
	p, err := s.authenticator.FromHeader(values[0])
	if err != nil {
		return domain.Principal{}, toStatus(err)
	}
	return p, nil
}

func optionalDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(field, value)
}

func (s *Server) SearchRooms(ctx context.Context, req *SearchRoomsRequest) (*rooms.Result, error) {
	filter := domain.RoomFilter{
		HotelID:     req.HotelID,
		City:        req.City,
		Type:        domain.RoomType(req.RoomType),
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		MinCapacity: req.Capacity,
	}
	page := rooms.Page{Offset: req.Offset, Limit: req.Limit}

	checkIn, err := optionalDate("check_in", req.CheckIn)
	if err != nil {
		return nil, toStatus(err)
	}
	checkOut, err := optionalDate("check_out", req.CheckOut)
	if err != nil {
		return nil, toStatus(err)
	}
	start, err := optionalDate("start_date", req.StartDate)
	if err != nil {
		return nil, toStatus(err)
	}

	var result rooms.Result
	switch {
	case req.StartDate != "" || req.Days != 0:
		result, err = s.rooms.SearchByDuration(ctx, rooms.DurationQuery{
			Filter:      filter,
			Start:       start,
			Days:        req.Days,
			SortByPrice: req.SortByPrice,
			Page:        page,
		})
	case req.CheckIn != "" || req.CheckOut != "":
		result, err = s.rooms.SearchByDates(ctx, rooms.DateQuery{
			Filter:      filter,
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			SortByPrice: req.SortByPrice,
			Page:        page,
		})
	default:
		result, err = s.rooms.ListRooms(ctx, rooms.RoomQuery{Filter: filter, SortByPrice: req.SortByPrice, Page: page})
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &result, nil
}

func (s *Server) SearchRoutes(ctx context.Context, req *SearchRoutesRequest) (*SearchRoutesResponse, error) {
	date, err := optionalDate("date", req.Date)
	if err != nil {
		return nil, toStatus(err)
	}
	routes, err := s.flights.Search(ctx, flights.RouteQuery{
		From:       req.From,
		To:         req.To,
		Date:       date,
		Passengers: req.Passengers,
		Via:        req.Via,
		SortBy:     flights.RouteSort(req.SortBy),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &SearchRoutesResponse{Routes: routes, Total: len(routes)}, nil
}

func (s *Server) ReserveRoom(ctx context.Context, req *ReserveRoomRequest) (*domain.HotelBooking, error) {
	principal, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	checkIn, err := domain.ParseDate("check_in", req.CheckIn)
	if err != nil {
		return nil, toStatus(err)
	}
	checkOut, err := domain.ParseDate("check_out", req.CheckOut)
	if err != nil {
		return nil, toStatus(err)
	}

	created, err := s.bookings.ReserveRoom(ctx, principal, booking.ReserveRoomInput{
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return created, nil
}

func (s *Server) ReserveFlight(ctx context.Context, req *ReserveFlightRequest) (*domain.FlightBooking, error) {
	principal, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	created, err := s.bookings.ReserveFlight(ctx, principal, booking.ReserveFlightInput{
		FlightIDs:      req.FlightIDs,
		PassengerCount: req.PassengerCount,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return created, nil
}

func (s *Server) CancelHotelBooking(ctx context.Context, req *CancelRequest) (*domain.HotelBooking, error) {
	principal, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.CancelHotelBooking(ctx, principal, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return cancelled, nil
}

func (s *Server) CancelFlightBooking(ctx context.Context, req *CancelRequest) (*domain.FlightBooking, error) {
	principal, err := s.principal(ctx)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.CancelFlightBooking(ctx, principal, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return cancelled, nil
}

// toStatus maps service errors onto gRPC codes. A forbidden booking is
// indistinguishable from a missing one.
func toStatus(err error) error {
	var (
		notFound  *domain.NotFoundError
		forbidden *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &forbidden):
		return status.Error(codes.NotFound, "booking not found")
	case domain.IsNotFound(err):
		if errors.As(err, &notFound) && strings.HasSuffix(notFound.Kind, "booking") {
			return status.Error(codes.NotFound, "booking not found")
		}
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrCapacity):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrBusy):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "authentication required")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		log.Printf("reservations rpc failed: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}

var _ ReservationsServer = (*Server)(nil)
