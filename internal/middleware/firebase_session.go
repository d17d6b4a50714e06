package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/pkg/logger"
)

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseUserResolver finds or creates the account for a Firebase identity.
type FirebaseUserResolver interface {
	FirebaseUser(ctx context.Context, uid, email string) (*models.User, error)
}

// FirebaseSession accepts a Firebase ID token as bearer credential. It only
// runs when Session did not already resolve a viewer.
func FirebaseSession(verifier IDTokenVerifier, users FirebaseUserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			idToken := bearerToken(c)
			if idToken == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				logger.Debug("ignoring firebase token", zap.Error(err))
				return next(c)
			}
			email, _ := token.Claims["email"].(string)
			user, err := users.FirebaseUser(ctx, token.UID, email)
			if err != nil {
				return err
			}
			setUser(c, user)
			return next(c)
		}
	}
}
