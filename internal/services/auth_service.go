package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/logger"
	"github.com/anonto42/yatube/pkg/validators"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// AuthService registers users and issues the signed session tokens.
type AuthService struct {
	users     repositories.UserRepository
	validator StructValidator
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(users repositories.UserRepository, validator StructValidator, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		validator: validator,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Signup validates the form and creates a local account.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, FieldErrors, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	ferrs := FieldErrors{}
	if err := s.validator.Validate(req); err != nil {
		for field, msg := range validators.FieldErrors(err) {
			ferrs[field] = msg
		}
	}
	if !ferrs.Has("username") {
		_, err := s.users.GetUserByUsername(ctx, req.Username)
		switch {
		case err == nil:
			ferrs["username"] = "A user with that username already exists."
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, fmt.Errorf("lookup username: %w", err)
		}
	}
	if len(ferrs) > 0 {
		return nil, ferrs, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: req.Username, Email: req.Email, Password: string(hashed)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	logger.Info("user signed up", zap.Uint("user", user.ID), zap.String("username", user.Username))
	return user, nil, nil
}

// Authenticate checks a username and password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FirebaseUser returns the account linked to a verified Firebase UID,
// creating it on first sight.
func (s *AuthService) FirebaseUser(ctx context.Context, uid, email string) (*models.User, error) {
	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup firebase user: %w", err)
	}

	user = &models.User{Username: firebaseUsername(uid), Email: email, FirebaseUID: &uid}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	logger.Info("firebase user created", zap.Uint("user", user.ID))
	return user, nil
}

func firebaseUsername(uid string) string {
	var b strings.Builder
	b.WriteString("fb-")
	for _, r := range uid {
		if b.Len() >= 3+24 {
			break
		}
		if r < 128 && (r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// UserFromToken verifies a session token and loads its user.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

func (s *AuthService) TTL() time.Duration { return s.ttl }
