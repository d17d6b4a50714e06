package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/services"
)

// FeedHandler serves the paginated post lists.
type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers the list pages. The home timeline goes
// through cachePage, the follow feed through loginRequired.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, cachePage, loginRequired echo.MiddlewareFunc) {
	g.GET("/", h.Index, cachePage)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/profile/:username/", h.Profile)
	g.GET("/follow/", h.FollowIndex, loginRequired)
}

// Index renders the home timeline.
func (h *FeedHandler) Index(c echo.Context) error {
	page, err := h.feed.Index(c.Request().Context(), c.QueryParam("page"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/index.html", echo.Map{
		"page_obj": page,
		"index":    true,
	})
}

// GroupPosts renders the posts of one group.
func (h *FeedHandler) GroupPosts(c echo.Context) error {
	group, page, err := h.feed.GroupPosts(c.Request().Context(), c.Param("slug"), c.QueryParam("page"))
	if err != nil {
		return serviceError(err)
	}
	return c.Render(http.StatusOK, "posts/group_list.html", echo.Map{
		"group":    group,
		"page_obj": page,
	})
}

// Profile renders an author's posts and the follow button.
func (h *FeedHandler) Profile(c echo.Context) error {
	view, err := h.feed.Profile(c.Request().Context(), c.Param("username"), middleware.CurrentUser(c), c.QueryParam("page"))
	if err != nil {
		return serviceError(err)
	}
	viewer := middleware.CurrentUser(c)
	return c.Render(http.StatusOK, "posts/profile.html", echo.Map{
		"author":          view.Author,
		"page_obj":        view.Page,
		"following":       view.Following,
		"show_following":  view.ShowFollowing && viewer.ID != view.Author.ID,
		"followers_count": view.FollowersCount,
		"following_count": view.FollowingCount,
	})
}

// FollowIndex renders the posts of the authors the viewer follows.
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	page, err := h.feed.FollowFeed(c.Request().Context(), middleware.CurrentUser(c), c.QueryParam("page"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/follow.html", echo.Map{
		"page_obj": page,
		"follow":   true,
	})
}
