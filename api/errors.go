package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

const bookingNotFound = "booking not found"

// statusOf maps a service error to an HTTP status and a client-facing message.
// Forbidden bookings are reported exactly like missing ones.
func statusOf(err error) (int, string) {
	var (
		notFound  *domain.NotFoundError
		forbidden *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &forbidden):
		return http.StatusNotFound, bookingNotFound
	case errors.As(err, &notFound):
		if strings.HasSuffix(notFound.Kind, "booking") {
			return http.StatusNotFound, bookingNotFound
		}
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrCapacity):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, message := statusOf(err)
	if !domain.IsClientError(err) && !errors.Is(err, auth.ErrUnauthenticated) {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	if domain.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{"error": message})
}
