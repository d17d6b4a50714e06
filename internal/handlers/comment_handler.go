package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/services"
)

// CommentHandler handles comment submissions
type CommentHandler struct {
	posts *services.PostService
}

func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, loginRequired echo.MiddlewareFunc) {
	g.POST("/posts/:id/comment/", h.AddComment, loginRequired)
}

// AddComment stores the comment and returns to the post.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var form models.CommentForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if _, err := h.posts.AddComment(c.Request().Context(), middleware.CurrentUser(c), id, form); err != nil {
		return serviceError(err)
	}
	return c.Redirect(http.StatusFound, postURL(id))
}
