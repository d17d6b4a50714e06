package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/services"
)

// PostHandler serves post detail and the create and edit forms.
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
}

func NewPostHandler(posts *services.PostService, feed *services.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, loginRequired echo.MiddlewareFunc) {
	g.GET("/posts/:id/", h.Detail)
	g.GET("/create/", h.CreateForm, loginRequired)
	g.POST("/create/", h.Create, loginRequired)
	g.GET("/posts/:id/edit/", h.EditForm, loginRequired)
	g.POST("/posts/:id/edit/", h.Edit, loginRequired)
}

// Detail renders a post with its comments and the comment form.
func (h *PostHandler) Detail(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	view, err := h.feed.PostDetail(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}
	return c.Render(http.StatusOK, "posts/post_detail.html", echo.Map{
		"post":         view.Post,
		"comments":     view.Comments,
		"author_posts": view.AuthorPosts,
		"form":         models.CommentForm{},
		"can_edit":     isAuthor(c, view.Post),
	})
}

func (h *PostHandler) CreateForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, models.PostForm{}, nil, nil)
}

// Create stores a new post and sends the author to their profile.
func (h *PostHandler) Create(c echo.Context) error {
	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	upload, closeUpload, err := imageUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	user := middleware.CurrentUser(c)
	_, ferrs, err := h.posts.Create(c.Request().Context(), user, form, upload)
	if err != nil {
		return err
	}
	if len(ferrs) > 0 {
		return h.renderForm(c, http.StatusOK, form, ferrs, nil)
	}
	return c.Redirect(http.StatusFound, profileURL(user.Username))
}

// EditForm shows the edit form to the author. Everybody else is sent back
// to the post.
func (h *PostHandler) EditForm(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.posts.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}
	if !isAuthor(c, post) {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}
	form := models.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = *post.GroupID
	}
	return h.renderForm(c, http.StatusOK, form, nil, post)
}

// Edit applies the form and redirects to the post. An invalid form is shown
// again in edit mode.
func (h *PostHandler) Edit(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var form models.PostForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	upload, closeUpload, err := imageUpload(c)
	if err != nil {
		return err
	}
	defer closeUpload()

	post, ferrs, err := h.posts.Edit(c.Request().Context(), middleware.CurrentUser(c), id, form, upload)
	switch {
	case errors.Is(err, services.ErrNotAuthor):
		return c.Redirect(http.StatusFound, postURL(id))
	case err != nil:
		return serviceError(err)
	case len(ferrs) > 0:
		return h.renderForm(c, http.StatusOK, form, ferrs, post)
	}
	return c.Redirect(http.StatusFound, postURL(post.ID))
}

// renderForm renders create_post.html. A non-nil post switches it into edit
// mode.
func (h *PostHandler) renderForm(c echo.Context, code int, form models.PostForm, ferrs services.FieldErrors, post *models.Post) error {
	groups, err := h.posts.Groups(c.Request().Context())
	if err != nil {
		return err
	}
	if ferrs == nil {
		ferrs = services.FieldErrors{}
	}
	return c.Render(code, "posts/create_post.html", echo.Map{
		"form":    form,
		"errors":  ferrs,
		"groups":  groups,
		"post":    post,
		"is_edit": post != nil,
	})
}

// imageUpload opens the optional "image" file of a multipart form. The
// returned func closes it.
func imageUpload(c echo.Context) (*services.Upload, func(), error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid upload").SetInternal(err)
	}
	if fh.Size == 0 {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Filename: fh.Filename, Reader: f}, func() { f.Close() }, nil
}

func isAuthor(c echo.Context, post *models.Post) bool {
	user := middleware.CurrentUser(c)
	return user != nil && user.ID == post.AuthorID
}
