package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/services"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	follows *services.FollowService
}

func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, loginRequired echo.MiddlewareFunc) {
	g.GET("/profile/:username/follow/", h.ProfileFollow, loginRequired)
	g.GET("/profile/:username/unfollow/", h.ProfileUnfollow, loginRequired)
}

// ProfileFollow subscribes the viewer to the author and returns to the profile.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	author, err := h.follows.Follow(c.Request().Context(), middleware.CurrentUser(c), c.Param("username"))
	if err != nil {
		return serviceError(err)
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	author, err := h.follows.Unfollow(c.Request().Context(), middleware.CurrentUser(c), c.Param("username"))
	if err != nil {
		return serviceError(err)
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}
