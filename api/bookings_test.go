package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) ReserveRoom(ctx context.Context, principal domain.Principal, input booking.ReserveRoomInput) (*domain.HotelBooking, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HotelBooking), args.Error(1)
}

func (m *MockBookingUseCase) ReserveFlight(ctx context.Context, principal domain.Principal, input booking.ReserveFlightInput) (*domain.FlightBooking, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightBooking), args.Error(1)
}

func (m *MockBookingUseCase) CancelHotelBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.HotelBooking, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HotelBooking), args.Error(1)
}

func (m *MockBookingUseCase) CancelFlightBooking(ctx context.Context, principal domain.Principal, id int64) (*domain.FlightBooking, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightBooking), args.Error(1)
}

func (m *MockBookingUseCase) ListHotelBookings(ctx context.Context, principal domain.Principal, query booking.BookingQuery) ([]domain.HotelBooking, error) {
	args := m.Called(ctx, principal, query)
	return args.Get(0).([]domain.HotelBooking), args.Error(1)
}

func (m *MockBookingUseCase) ListFlightBookings(ctx context.Context, principal domain.Principal, query booking.BookingQuery) ([]domain.FlightBooking, error) {
	args := m.Called(ctx, principal, query)
	return args.Get(0).([]domain.FlightBooking), args.Error(1)
}

var (
	alice = domain.Principal{ID: 7, Role: domain.RoleUser}
	admin = domain.Principal{ID: 1, Role: domain.RoleAdmin}
)

func newTestRouter(t *testing.T, roomsSvc *MockRoomUseCase, flightsSvc *MockFlightUseCase, bookingsSvc *MockBookingUseCase) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens("test-secret", time.Hour)
	router := NewRouter(NewRoomHandler(roomsSvc), NewFlightHandler(flightsSvc), NewBookingHandler(bookingsSvc), tokens)
	return router, tokens
}

func bearer(t *testing.T, tokens *auth.Tokens, principal domain.Principal) string {
	t.Helper()
	token, err := tokens.Issue(principal)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(router *gin.Engine, method, path string, body any, authorization string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestBookingHandler_reserveRoom(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router, tokens := newTestRouter(t, &MockRoomUseCase{}, &MockFlightUseCase{}, mockService)

	input := booking.ReserveRoomInput{
		RoomID:     1,
		CheckIn:    domain.Date(2024, time.January, 15),
		CheckOut:   domain.Date(2024, time.January, 20),
		GuestCount: 2,
	}
	created := &domain.HotelBooking{
		ID:         1,
		RoomID:     1,
		UserID:     alice.ID,
		Stay:       domain.NewStay(input.CheckIn, input.CheckOut),
		GuestCount: 2,
		TotalPrice: decimal.NewFromInt(500),
		Status:     domain.BookingStatusConfirmed,
	}
	mockService.On("ReserveRoom", mock.Anything, alice, input).Return(created, nil).Once()

	w := serve(router, http.MethodPost, "/api/v1/bookings/hotel", reserveRoomRequest{
		RoomID:     1,
		CheckIn:    "2024-01-15",
		CheckOut:   "2024-01-20",
		GuestCount: 2,
	}, bearer(t, tokens, alice))

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.HotelBooking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.ID)
	assert.Equal(t, domain.BookingStatusConfirmed, response.Status)
	assert.True(t, response.TotalPrice.Equal(decimal.NewFromInt(500)))
	mockService.AssertExpectations(t)
}

func TestBookingHandler_reserveRoomErrors(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router, tokens := newTestRouter(t, &MockRoomUseCase{}, &MockFlightUseCase{}, mockService)
	token := bearer(t, tokens, alice)

	w := serve(router, http.MethodPost, "/api/v1/bookings/hotel", reserveRoomRequest{RoomID: 1, CheckIn: "2024-01-15", CheckOut: "2024-01-20"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodPost, "/api/v1/bookings/hotel", reserveRoomRequest{RoomID: 1, CheckIn: "15.01.2024", CheckOut: "2024-01-20"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "check_in")

	w = serve(router, http.MethodPost, "/api/v1/bookings/hotel", "not an object", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.On("ReserveRoom", mock.Anything, alice, mock.MatchedBy(func(in booking.ReserveRoomInput) bool { return in.RoomID == 2 })).
		Return(nil, &domain.CapacityError{Kind: "room", ID: 2}).Once()
	w = serve(router, http.MethodPost, "/api/v1/bookings/hotel", reserveRoomRequest{RoomID: 2, CheckIn: "2024-01-18", CheckOut: "2024-01-22", GuestCount: 1}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "room 2 is not available for the selected dates", errorMessage(t, w))

	mockService.On("ReserveRoom", mock.Anything, alice, mock.MatchedBy(func(in booking.ReserveRoomInput) bool { return in.RoomID == 3 })).
		Return(nil, &domain.BusyError{Key: "room:3"}).Once()
	w = serve(router, http.MethodPost, "/api/v1/bookings/hotel", reserveRoomRequest{RoomID: 3, CheckIn: "2024-01-18", CheckOut: "2024-01-22", GuestCount: 1}, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	mockService.AssertExpectations(t)
}

func TestBookingHandler_reserveFlight(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router, tokens := newTestRouter(t, &MockRoomUseCase{}, &MockFlightUseCase{}, mockService)

	input := booking.ReserveFlightInput{FlightIDs: []int64{1, 2}, PassengerCount: 2}
	created := &domain.FlightBooking{
		ID:             1,
		FlightIDs:      []int64{1, 2},
		UserID:         alice.ID,
		PassengerCount: 2,
		Status:         domain.BookingStatusConfirmed,
		Reference:      "FL000001S6K2O0",
	}
	mockService.On("ReserveFlight", mock.Anything, alice, input).Return(created, nil).Once()
	mockService.On("ReserveFlight", mock.Anything, alice, booking.ReserveFlightInput{FlightIDs: []int64{3}, PassengerCount: 1}).
		Return(nil, &domain.ConsistencyFault{Kind: "flight", ID: 3, Detail: "seats below zero"}).Once()

	w := serve(router, http.MethodPost, "/api/v1/bookings/flight", reserveFlightRequest{FlightIDs: []int64{1, 2}, PassengerCount: 2}, bearer(t, tokens, alice))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "FL000001S6K2O0")

	w = serve(router, http.MethodPost, "/api/v1/bookings/flight", reserveFlightRequest{FlightIDs: []int64{3}, PassengerCount: 1}, bearer(t, tokens, alice))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", errorMessage(t, w))

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancelHidesOwnership(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router, tokens := newTestRouter(t, &MockRoomUseCase{}, &MockFlightUseCase{}, mockService)
	token := bearer(t, tokens, alice)

	mockService.On("CancelHotelBooking", mock.Anything, alice, int64(5)).
		Return(nil, &domain.ForbiddenError{PrincipalID: alice.ID, Kind: "hotel_booking", ID: 5}).Once()
	mockService.On("CancelHotelBooking", mock.Anything, alice, int64(6)).
		Return(nil, &domain.NotFoundError{Kind: "hotel_booking", ID: 6}).Once()

	forbidden := serve(router, http.MethodDelete, "/api/v1/bookings/hotel/5", nil, token)
	missing := serve(router, http.MethodDelete, "/api/v1/bookings/hotel/6", nil, token)

	assert.Equal(t, http.StatusNotFound, forbidden.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String(), forbidden.Body.String())
	assert.Equal(t, bookingNotFound, errorMessage(t, forbidden))

	w := serve(router, http.MethodDelete, "/api/v1/bookings/flight/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancelFlight(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/flight/4", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	c.Set(principalKey, admin)

	cancelled := &domain.FlightBooking{ID: 4, UserID: alice.ID, Status: domain.BookingStatusCancelled}
	mockService.On("CancelFlightBooking", c.Request.Context(), admin, int64(4)).Return(cancelled, nil)

	handler.cancelFlight(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.FlightBooking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.BookingStatusCancelled, response.Status)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router, tokens := newTestRouter(t, &MockRoomUseCase{}, &MockFlightUseCase{}, mockService)

	mockService.On("ListHotelBookings", mock.Anything, admin, booking.BookingQuery{Status: domain.BookingStatusConfirmed, Offset: 10, Limit: 5}).
		Return([]domain.HotelBooking{{ID: 11}, {ID: 12}}, nil).Once()
	mockService.On("ListFlightBookings", mock.Anything, alice, booking.BookingQuery{}).
		Return([]domain.FlightBooking{}, nil).Once()

	w := serve(router, http.MethodGet, "/api/v1/bookings/hotel?status=confirmed&offset=10&limit=5", nil, bearer(t, tokens, admin))
	assert.Equal(t, http.StatusOK, w.Code)
	var hotel []domain.HotelBooking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hotel))
	assert.Len(t, hotel, 2)

	w = serve(router, http.MethodGet, "/api/v1/bookings/flight", nil, bearer(t, tokens, alice))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = serve(router, http.MethodGet, "/api/v1/bookings/flight?limit=-1", nil, bearer(t, tokens, alice))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}
