package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/pkg/logger"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"

	userKey = "user"
)

// TokenResolver maps a session token onto its user.
type TokenResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// CurrentUser returns the viewer resolved by Session, or nil for an
// anonymous request.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}

func setUser(c echo.Context, user *models.User) {
	c.Set(userKey, user)
}

// Session resolves the viewer from the session cookie or a bearer token.
// A missing or invalid token leaves the request anonymous.
func Session(resolver TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return next(c)
			}
			user, err := resolver.UserFromToken(c.Request().Context(), token)
			if err != nil {
				logger.Debug("ignoring session token", zap.Error(err))
				return next(c)
			}
			setUser(c, user)
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(c)
}

// bearerToken extracts "Bearer <token>" from the Authorization header.
func bearerToken(c echo.Context) string {
	parts := strings.Fields(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
