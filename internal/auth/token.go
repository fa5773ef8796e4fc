// Package auth turns bearer tokens into the principal every guarded operation
// receives. Tokens are HS256 JWTs carrying the user id and role.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Claims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwtlib.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *Tokens) Issue(principal domain.Principal) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: principal.ID,
		Role:   principal.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   fmt.Sprint(principal.ID),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Verify(token string) (domain.Principal, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(tok *jwtlib.Token) (any, error) {
		return t.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID < 1 {
		return domain.Principal{}, fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}

	role := claims.Role
	switch role {
	case domain.RoleAdmin, domain.RoleUser:
	case "":
		role = domain.RoleUser
	default:
		return domain.Principal{}, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, role)
	}
	return domain.Principal{ID: claims.UserID, Role: role}, nil
}

// FromHeader verifies an "Authorization: Bearer <token>" header value.
func (t *Tokens) FromHeader(header string) (domain.Principal, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Principal{}, fmt.Errorf("%w: bearer token required", ErrUnauthenticated)
	}
	return t.Verify(strings.TrimSpace(token))
}
