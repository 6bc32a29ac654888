package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "bugtrack/internal/errors"
	"bugtrack/internal/model"
)

// Policy selects how the gate treats authentication failures.
type Policy int

const (
	// Require rejects the request when no valid identity can be attached.
	Require Policy = iota
	// Optional attaches an identity when possible and lets every request
	// through. Read endpoints use it to personalize results.
	Optional
)

// ContextUserKey is the echo context key under which the resolved user is stored.
const ContextUserKey = "user"

var (
	// ErrUserNotFound is returned when a verified token's subject no longer
	// resolves to a stored user.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserLookup marks an unexpected store failure during identity
	// resolution, reported as a server error rather than a credential problem.
	ErrUserLookup = errors.New("user lookup failed")
)

// UserResolver resolves a verified token subject to a stored user.
type UserResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Gate authenticates requests: it extracts the bearer token, verifies it and
// resolves the identity, attaching the user to the request context. Both
// policies share the same verification path so the two modes cannot drift.
type Gate struct {
	jwt   *JWTService
	users UserResolver
}

// NewGate creates a new authentication gate.
func NewGate(jwt *JWTService, users UserResolver) *Gate {
	return &Gate{jwt: jwt, users: users}
}

// Middleware returns an echo middleware enforcing the given policy.
func (g *Gate) Middleware(policy Policy) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:             ContextUserKey,
		ContinueOnIgnoredError: policy == Optional,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			userID, err := g.jwt.VerifyToken(auth)
			if err != nil {
				return nil, err
			}
			user, err := g.users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUserNotFound
				}
				return nil, fmt.Errorf("%w: %v", ErrUserLookup, err)
			}
			return user, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if policy == Optional {
				return nil
			}
			return c.JSON(gateErrorStatus(err), gateErrorResponse(err))
		},
	})
}

func gateErrorStatus(err error) int {
	if errors.Is(err, ErrUserLookup) {
		return http.StatusInternalServerError
	}
	return http.StatusUnauthorized
}

func gateErrorResponse(err error) apperrors.ErrorResponse {
	switch {
	case errors.Is(err, ErrUserLookup):
		return apperrors.ErrorResponse{Error: "Server error during authentication.", Code: "AUTH_ERROR"}
	case errors.Is(err, ErrTokenExpired):
		return apperrors.ErrorResponse{Error: "Token expired.", Code: "TOKEN_EXPIRED"}
	case errors.Is(err, ErrUserNotFound):
		return apperrors.ErrorResponse{Error: "User not found.", Code: "USER_NOT_FOUND"}
	case errors.Is(err, ErrInvalidToken):
		return apperrors.ErrorResponse{Error: "Invalid token.", Code: "INVALID_TOKEN"}
	default:
		// nothing extractable from the Authorization header
		return apperrors.ErrorResponse{Error: "Access denied. No token provided.", Code: "NO_TOKEN"}
	}
}

// CurrentUser returns the identity attached by the gate, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	return user, ok
}
