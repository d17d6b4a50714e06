package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/pkg/logger"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	auth         *services.AuthService
	firebase     middleware.IDTokenVerifier
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, in which
// case the Firebase login route is not registered.
func NewAuthHandler(auth *services.AuthService, firebase middleware.IDTokenVerifier, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, firebase: firebase, secureCookie: secureCookie}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/signup/", h.SignupForm)
	g.POST("/signup/", h.Signup)
	g.GET("/login/", h.LoginForm)
	g.POST("/login/", h.Login)
	g.GET("/logout/", h.Logout)
	if h.firebase != nil {
		g.POST("/firebase-login/", h.FirebaseLogin)
	}
}

func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, "auth/signup.html", echo.Map{
		"form":   models.SignupRequest{},
		"errors": services.FieldErrors{},
	})
}

// Signup creates a local account and logs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	user, ferrs, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if len(ferrs) > 0 {
		req.Password, req.Password2 = "", ""
		return c.Render(http.StatusOK, "auth/signup.html", echo.Map{"form": req, "errors": ferrs})
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "auth/login.html", echo.Map{
		"next":     c.QueryParam("next"),
		"username": "",
		"error":    "",
	})
}

// Login checks the credentials and redirects to ?next= when it is a local
// path, to the home page otherwise.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if req.Next == "" {
		req.Next = c.QueryParam("next")
	}

	user, err := h.auth.Authenticate(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Render(http.StatusOK, "auth/login.html", echo.Map{
			"next":     req.Next,
			"username": req.Username,
			"error":    "Please enter a correct username and password.",
		})
	}
	if err != nil {
		return err
	}
	if err := h.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, safeNext(req.Next))
}

// Logout drops the session cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	token, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		logger.Info("firebase token rejected", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)

	user, err := h.auth.FirebaseUser(ctx, token.UID, email)
	if err != nil {
		return err
	}
	signed, err := h.auth.IssueToken(user)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, signed)
	return c.JSON(http.StatusOK, echo.Map{"token": signed})
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User) error {
	signed, err := h.auth.IssueToken(user)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, signed)
	logger.Info("user logged in", zap.Uint("user", user.ID))
	return nil
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.auth.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext only follows local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
