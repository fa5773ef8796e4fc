package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts every handler under /api/v1. Booking routes require a bearer token.
func NewRouter(rooms *RoomHandler, flights *FlightHandler, bookings *BookingHandler, authenticator Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	rooms.Register(v1.Group("/rooms"))
	flights.Register(v1.Group("/flights"))
	bookings.Register(v1.Group("/bookings", Authenticate(authenticator)))

	return router
}
