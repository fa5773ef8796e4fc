package api

import (
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		writeError(c, err)
		return
	}

	filter := domain.FlightFilter{
		DepartureCity: c.Query("departure_city"),
		ArrivalCity:   c.Query("arrival_city"),
		SortBy:        domain.FlightSort(c.Query("sort_by")),
	}
	if !date.IsZero() {
		filter.DepartureFrom = date
		filter.DepartureTo = date.AddDate(0, 0, 1)
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) search(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		writeError(c, err)
		return
	}
	passengers, err := queryInt(c, "passengers", 1)
	if err != nil {
		writeError(c, err)
		return
	}

	routes, err := h.service.Search(c.Request.Context(), flights.RouteQuery{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Date:       date,
		Passengers: passengers,
		Via:        c.Query("via"),
		SortBy:     flights.RouteSort(c.Query("sort_by")),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "total": len(routes)})
}
