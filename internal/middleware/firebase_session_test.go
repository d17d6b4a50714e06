package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/anonto42/yatube/internal/models"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "firebase-token" {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "fb@example.com"}}, nil
}

type stubFirebaseUsers struct {
	seen []string
}

func (s *stubFirebaseUsers) FirebaseUser(_ context.Context, uid, email string) (*models.User, error) {
	s.seen = append(s.seen, uid+"|"+email)
	return &models.User{ID: 7, Username: "fb-" + uid}, nil
}

func TestFirebaseSession(t *testing.T) {
	users := &stubFirebaseUsers{}
	e := echo.New()
	e.Use(Session(stubResolver{tokens: map[string]*models.User{"local": {ID: 1, Username: "leo"}}}))
	e.Use(FirebaseSession(stubVerifier{}, users))
	e.GET("/", whoami)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer firebase-token")
	assert.Equal(t, "fb-uid-1", serve(e, req).Body.String())
	assert.Equal(t, []string{"uid-1|fb@example.com"}, users.seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer local")
	assert.Equal(t, "leo", serve(e, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer forged")
	assert.Equal(t, "anonymous", serve(e, req).Body.String())
	assert.Len(t, users.seen, 1)
}
