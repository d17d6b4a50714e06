package router_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/media"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/testutil"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/validators"
)

const (
	postCard      = `<article class="post">`
	testCSRFToken = "test-csrf-token"
)

// smallGIF is a 2x1 GIF image.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type app struct {
	e     *echo.Echo
	db    *gorm.DB
	cache *cache.MemoryCache
	clock *cache.StubClock
	auth  *services.AuthService
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{
		Env:          "test",
		SecretKey:    "test-secret",
		SessionTTL:   time.Hour,
		LoginURL:     "/auth/login/",
		PostsPerPage: 10,
		CacheBackend: "memory",
		CacheTTL:     20 * time.Second,
		MediaBackend: "local",
	}
	db := testutil.NewDB(t)
	storage, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	clock := cache.NewStubClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	pageCache := cache.NewMemoryCache(clock)

	e, err := router.New(cfg, router.Deps{DB: db, Cache: pageCache, Storage: storage})
	require.NoError(t, err)

	auth := services.NewAuthService(repositories.NewGormUserRepository(db), validators.NewValidator(), cfg.SecretKey, cfg.SessionTTL)
	return &app{e: e, db: db, cache: pageCache, clock: clock, auth: auth}
}

// do sends req with a CSRF cookie, authenticated as user when user is not
// nil.
func (a *app) do(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: testCSRFToken})
	if user != nil {
		token, err := a.auth.IssueToken(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) get(t *testing.T, target string, user *models.User) *httptest.ResponseRecorder {
	return a.do(t, httptest.NewRequest(http.MethodGet, target, nil), user)
}

// postForm submits form together with the CSRF token matching the cookie
// set by do.
func (a *app) postForm(t *testing.T, target string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	signed := url.Values{"csrfmiddlewaretoken": {testCSRFToken}}
	for k, v := range form {
		signed[k] = v
	}
	return a.postRaw(t, target, signed, user)
}

func (a *app) postRaw(t *testing.T, target string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return a.do(t, req, user)
}

func TestPublicPages(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "auth")
	group := testutil.NewGroup(t, a.db)
	post := testutil.NewPost(t, a.db, author, group, "Test post text")

	for _, target := range []string{
		"/",
		"/group/" + group.Slug + "/",
		"/profile/auth/",
		"/posts/" + itoa(post.ID) + "/",
	} {
		rec := a.get(t, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Test post text", target)
	}
}

func TestUnknownPagesAre404(t *testing.T) {
	a := newApp(t)
	for _, target := range []string{
		"/posts/doesnotexist/",
		"/posts/999/",
		"/group/nope/",
		"/profile/nobody/",
		"/unexisting_page/",
	} {
		rec := a.get(t, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Page not found", target)
	}
}

func TestLoginRequiredRedirects(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "auth")
	post := testutil.NewPost(t, a.db, author, nil, "")

	tests := []struct {
		method, target string
	}{
		{http.MethodGet, "/create/"},
		{http.MethodGet, "/follow/"},
		{http.MethodGet, "/posts/" + itoa(post.ID) + "/edit/"},
		{http.MethodPost, "/posts/" + itoa(post.ID) + "/comment/"},
		{http.MethodGet, "/profile/auth/follow/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		req.Header.Set("X-CSRF-Token", testCSRFToken)
		rec := a.do(t, req, nil)
		assert.Equal(t, http.StatusFound, rec.Code, tt.target)
		assert.Equal(t, "/auth/login/?next="+tt.target, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "auth")
	group := testutil.NewGroup(t, a.db)

	rec := a.postForm(t, "/create/", url.Values{"text": {"hello"}, "group": {itoa(group.ID)}}, author)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/auth/", rec.Header().Get(echo.HeaderLocation))

	var post models.Post
	require.NoError(t, a.db.First(&post).Error)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
}

func TestCreatePostInvalidRerendersForm(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")

	rec := a.postForm(t, "/create/", url.Values{"text": {""}}, author)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")

	var count int64
	require.NoError(t, a.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostWithImage(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("csrfmiddlewaretoken", testCSRFToken))
	require.NoError(t, mw.WriteField("text", "with a picture"))
	fw, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = fw.Write(smallGIF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := a.do(t, req, author)
	require.Equal(t, http.StatusFound, rec.Code)

	var post models.Post
	require.NoError(t, a.db.First(&post).Error)
	require.NotEmpty(t, post.Image)

	detail := a.get(t, "/posts/"+itoa(post.ID)+"/", nil)
	assert.Contains(t, detail.Body.String(), "/media/"+post.Image)

	img := a.get(t, "/media/"+post.Image, nil)
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/gif", img.Header().Get(echo.HeaderContentType))
	assert.Equal(t, smallGIF, img.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, a.get(t, "/media/posts/missing.gif", nil).Code)
}

func TestEditPost(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	other := testutil.NewUser(t, a.db, "")
	post := testutil.NewPost(t, a.db, author, nil, "original")
	editURL := "/posts/" + itoa(post.ID) + "/edit/"
	detailURL := "/posts/" + itoa(post.ID) + "/"

	form := a.get(t, editURL, author)
	assert.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), "Edit post")
	assert.Contains(t, form.Body.String(), "original")

	rec := a.get(t, editURL, other)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detailURL, rec.Header().Get(echo.HeaderLocation))

	rec = a.postForm(t, editURL, url.Values{"text": {"hijacked"}}, other)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detailURL, rec.Header().Get(echo.HeaderLocation))

	invalid := a.postForm(t, editURL, url.Values{"text": {""}}, author)
	assert.Equal(t, http.StatusOK, invalid.Code)
	assert.Contains(t, invalid.Body.String(), "Edit post")

	rec = a.postForm(t, editURL, url.Values{"text": {"edited"}}, author)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detailURL, rec.Header().Get(echo.HeaderLocation))

	var got models.Post
	require.NoError(t, a.db.First(&got, post.ID).Error)
	assert.Equal(t, "edited", got.Text)
}

func TestAddComment(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	reader := testutil.NewUser(t, a.db, "")
	post := testutil.NewPost(t, a.db, author, nil, "")

	rec := a.postForm(t, "/posts/"+itoa(post.ID)+"/comment/", url.Values{"text": {"Great post"}}, reader)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/"+itoa(post.ID)+"/", rec.Header().Get(echo.HeaderLocation))

	detail := a.get(t, "/posts/"+itoa(post.ID)+"/", nil)
	assert.Contains(t, detail.Body.String(), "Great post")

	rec = a.postForm(t, "/posts/999/comment/", url.Values{"text": {"x"}}, reader)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexPagination(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	testutil.NewPosts(t, a.db, author, nil, 13)

	first := a.get(t, "/", nil)
	assert.Equal(t, 10, strings.Count(first.Body.String(), postCard))

	second := a.get(t, "/?page=2", nil)
	assert.Equal(t, 3, strings.Count(second.Body.String(), postCard))
}

func TestIndexIsCached(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	post := testutil.NewPost(t, a.db, author, nil, "cached text")

	first := a.get(t, "/", nil)
	require.Contains(t, first.Body.String(), "cached text")

	require.NoError(t, a.db.Delete(&models.Post{}, post.ID).Error)

	stale := a.get(t, "/", nil)
	assert.Equal(t, first.Body.String(), stale.Body.String())
	assert.Equal(t, "HIT", stale.Header().Get("X-Cache"))

	require.NoError(t, a.cache.Clear(context.Background()))
	fresh := a.get(t, "/", nil)
	assert.NotContains(t, fresh.Body.String(), "cached text")
}

func TestIndexCacheExpires(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	a.get(t, "/", nil)

	testutil.NewPost(t, a.db, author, nil, "late post")
	assert.NotContains(t, a.get(t, "/", nil).Body.String(), "late post")

	a.clock.Advance(20 * time.Second)
	assert.Contains(t, a.get(t, "/", nil).Body.String(), "late post")
}

func TestProfileFirstPostAndFollowButton(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "auth")
	viewer := testutil.NewUser(t, a.db, "")
	testutil.NewPost(t, a.db, author, nil, "first words")
	testutil.NewPost(t, a.db, author, nil, "hello")

	rec := a.get(t, "/profile/auth/", nil)
	body := rec.Body.String()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, strings.Index(body, "hello"), strings.Index(body, "first words"))
	assert.NotContains(t, body, "/profile/auth/follow/")

	assert.Contains(t, a.get(t, "/profile/auth/", viewer).Body.String(), "/profile/auth/follow/")
	assert.NotContains(t, a.get(t, "/profile/auth/", author).Body.String(), "/profile/auth/follow/")
}

func TestFollowFlow(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "auth")
	reader := testutil.NewUser(t, a.db, "")
	stranger := testutil.NewUser(t, a.db, "")
	testutil.NewPost(t, a.db, author, nil, "for followers")

	assert.NotContains(t, a.get(t, "/follow/", reader).Body.String(), "for followers")

	for i := 0; i < 2; i++ {
		rec := a.get(t, "/profile/auth/follow/", reader)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile/auth/", rec.Header().Get(echo.HeaderLocation))
	}
	var edges int64
	require.NoError(t, a.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	assert.Contains(t, a.get(t, "/follow/", reader).Body.String(), "for followers")
	assert.NotContains(t, a.get(t, "/follow/", stranger).Body.String(), "for followers")
	assert.Contains(t, a.get(t, "/profile/auth/", reader).Body.String(), "/profile/auth/unfollow/")

	rec := a.get(t, "/profile/auth/unfollow/", reader)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.NotContains(t, a.get(t, "/follow/", reader).Body.String(), "for followers")

	rec = a.get(t, "/profile/auth/follow/", author)
	assert.Equal(t, http.StatusFound, rec.Code)
	require.NoError(t, a.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestSignupLoginLogout(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, http.StatusOK, a.get(t, "/auth/signup/", nil).Code)
	assert.Equal(t, http.StatusOK, a.get(t, "/auth/login/?next=/create/", nil).Code)

	rec := a.postForm(t, "/auth/signup/", url.Values{
		"username": {"newbie"}, "email": {"newbie@example.com"},
		"password": {"long-enough"}, "password2": {"long-enough"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.NotEmpty(t, sessionCookie(rec))

	rec = a.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"wrong-password"},
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")

	rec = a.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"long-enough"}, "next": {"/create/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get(echo.HeaderLocation))
	token := sessionCookie(rec)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusOK, a.do(t, req, nil).Code)

	rec = a.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"long-enough"}, "next": {"//evil.example.com/"},
	}, nil)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = a.get(t, "/auth/logout/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			assert.Empty(t, c.Value)
		}
	}
}

func TestFormPostsRequireCSRFToken(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")
	post := testutil.NewPost(t, a.db, author, nil, "guarded")
	commentURL := "/posts/" + itoa(post.ID) + "/comment/"

	form := a.get(t, "/create/", author)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `name="csrfmiddlewaretoken" value="`+testCSRFToken+`"`)

	login := a.get(t, "/auth/login/", nil)
	assert.Contains(t, login.Body.String(), `value="`+testCSRFToken+`"`)

	rec := a.postRaw(t, commentURL, url.Values{"text": {"no token"}}, author)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.postRaw(t, commentURL, url.Values{"text": {"forged"}, "csrfmiddlewaretoken": {"forged"}}, author)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.postRaw(t, "/create/", url.Values{"text": {"forged"}, "csrfmiddlewaretoken": {"forged"}}, author)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var comments int64
	require.NoError(t, a.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)

	rec = a.postForm(t, commentURL, url.Values{"text": {"signed"}}, author)
	assert.Equal(t, http.StatusFound, rec.Code)

	token, err := a.auth.IssueToken(author)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, commentURL, strings.NewReader(url.Values{"text": {"api"}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)

	require.NoError(t, a.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(2), comments)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	a := newApp(t)
	author := testutil.NewUser(t, a.db, "")

	body := bytes.Repeat([]byte("a"), 11<<20)
	req := httptest.NewRequest(http.MethodPost, "/create/", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := a.do(t, req, author)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var count int64
	require.NoError(t, a.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.get(t, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c.Value
		}
	}
	return ""
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
