package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type reserveRoomRequest struct {
	RoomID     int64  `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
}

type reserveFlightRequest struct {
	FlightIDs      []int64 `json:"flight_ids"`
	PassengerCount int     `json:"passenger_count"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/hotel", h.reserveRoom)
	router.GET("/hotel", h.listHotel)
	router.DELETE("/hotel/:id", h.cancelHotel)
	router.POST("/flight", h.reserveFlight)
	router.GET("/flight", h.listFlight)
	router.DELETE("/flight/:id", h.cancelFlight)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, &domain.ValidationError{Reason: "malformed request body: " + err.Error()})
		return false
	}
	return true
}

func (h *BookingHandler) reserveRoom(c *gin.Context) {
	var req reserveRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	checkIn, err := domain.ParseDate("check_in", req.CheckIn)
	if err != nil {
		writeError(c, err)
		return
	}
	checkOut, err := domain.ParseDate("check_out", req.CheckOut)
	if err != nil {
		writeError(c, err)
		return
	}

	created, err := h.service.ReserveRoom(c.Request.Context(), principalFrom(c), booking.ReserveRoomInput{
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) reserveFlight(c *gin.Context) {
	var req reserveFlightRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.ReserveFlight(c.Request.Context(), principalFrom(c), booking.ReserveFlightInput{
		FlightIDs:      req.FlightIDs,
		PassengerCount: req.PassengerCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) cancelHotel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	cancelled, err := h.service.CancelHotelBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (h *BookingHandler) cancelFlight(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	cancelled, err := h.service.CancelFlightBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func bookingQuery(c *gin.Context) (booking.BookingQuery, error) {
	offset, limit, err := queryPage(c)
	if err != nil {
		return booking.BookingQuery{}, err
	}
	return booking.BookingQuery{
		Status: domain.BookingStatus(c.Query("status")),
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (h *BookingHandler) listHotel(c *gin.Context) {
	query, err := bookingQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.service.ListHotelBookings(c.Request.Context(), principalFrom(c), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) listFlight(c *gin.Context) {
	query, err := bookingQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.service.ListFlightBookings(c.Request.Context(), principalFrom(c), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
