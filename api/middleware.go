package api

import (
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator resolves the Authorization header into a principal.
type Authenticator interface {
	FromHeader(header string) (domain.Principal, error)
}

// Authenticate aborts with 401 unless the request carries a valid bearer token.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authenticator.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) domain.Principal {
	p, _ := c.MustGet(principalKey).(domain.Principal)
	return p
}
