package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	service rooms.RoomUseCase
}

func NewRoomHandler(service rooms.RoomUseCase) *RoomHandler {
	return &RoomHandler{service: service}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/available-by-dates", h.byDates)
	router.GET("/available-by-duration", h.byDuration)
}

// roomParams reads the catalog filter, price ordering and page shared by every room endpoint.
func roomParams(c *gin.Context) (domain.RoomFilter, bool, rooms.Page, error) {
	var filter domain.RoomFilter

	hotelID, err := queryInt(c, "hotel_id", 0)
	if err != nil {
		return filter, false, rooms.Page{}, err
	}
	capacity, err := queryInt(c, "capacity", 0)
	if err != nil {
		return filter, false, rooms.Page{}, err
	}
	minPrice, err := queryDecimal(c, "min_price")
	if err != nil {
		return filter, false, rooms.Page{}, err
	}
	maxPrice, err := queryDecimal(c, "max_price")
	if err != nil {
		return filter, false, rooms.Page{}, err
	}
	offset, limit, err := queryPage(c)
	if err != nil {
		return filter, false, rooms.Page{}, err
	}

	var byPrice bool
	switch c.Query("sort_by") {
	case "", "id":
	case "price":
		byPrice = true
	default:
		return filter, false, rooms.Page{}, &domain.ValidationError{Field: "sort_by", Reason: "must be id or price"}
	}

	filter = domain.RoomFilter{
		HotelID:     int64(hotelID),
		City:        c.Query("city"),
		Type:        domain.RoomType(c.Query("room_type")),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		MinCapacity: capacity,
	}
	return filter, byPrice, rooms.Page{Offset: offset, Limit: limit}, nil
}

func (h *RoomHandler) list(c *gin.Context) {
	filter, byPrice, page, err := roomParams(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.ListRooms(c.Request.Context(), rooms.RoomQuery{Filter: filter, SortByPrice: byPrice, Page: page})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RoomHandler) byDates(c *gin.Context) {
	filter, byPrice, page, err := roomParams(c)
	if err != nil {
		writeError(c, err)
		return
	}
	checkIn, err := queryDate(c, "check_in")
	if err != nil {
		writeError(c, err)
		return
	}
	checkOut, err := queryDate(c, "check_out")
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.SearchByDates(c.Request.Context(), rooms.DateQuery{
		Filter:      filter,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		SortByPrice: byPrice,
		Page:        page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RoomHandler) byDuration(c *gin.Context) {
	filter, byPrice, page, err := roomParams(c)
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := queryDate(c, "start_date")
	if err != nil {
		writeError(c, err)
		return
	}
	days, err := queryInt(c, "days", 0)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.SearchByDuration(c.Request.Context(), rooms.DurationQuery{
		Filter:      filter,
		Start:       start,
		Days:        days,
		SortByPrice: byPrice,
		Page:        page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
