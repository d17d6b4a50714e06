package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/handlers"
	"github.com/anonto42/yatube/internal/media"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/templates"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/logger"
	"github.com/anonto42/yatube/pkg/validators"
)

const (
	// indexCachePrefix namespaces home timeline entries inside the page cache.
	indexCachePrefix = "index:"
	// bodyLimit caps request bodies, image uploads included.
	bodyLimit = "10M"

	csrfCookie    = "csrftoken"
	csrfFormField = "csrfmiddlewaretoken"
	csrfHeader    = "X-CSRF-Token"
)

// Deps are the backing services the routes are wired to.
type Deps struct {
	DB      *gorm.DB
	Cache   cache.Cache
	Storage media.Storage
	// Firebase is nil unless FIREBASE_CREDENTIALS_PATH is configured.
	Firebase middleware.IDTokenVerifier
}

// New builds the echo instance with renderer, validator, error handler,
// middleware and routes.
func New(cfg *config.Config, deps Deps) (*echo.Echo, error) {
	renderer, err := handlers.NewRenderer(templates.FS)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	SetupMiddleware(e)
	SetupRoutes(e, cfg, deps)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(eMiddleware.BodyLimit(bodyLimit))
	e.Use(eMiddleware.CSRFWithConfig(eMiddleware.CSRFConfig{
		Skipper:        skipCSRF,
		TokenLookup:    "form:" + csrfFormField + ",header:" + csrfHeader,
		ContextKey:     handlers.CSRFContextKey,
		CookieName:     csrfCookie,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
}

// skipCSRF exempts requests that carry their credentials in a header
// rather than in a cookie the browser attaches on its own.
func skipCSRF(c echo.Context) bool {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ") {
		return true
	}
	return c.Path() == "/auth/firebase-login/"
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Deps) {
	validator := e.Validator

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(deps.DB)
	groupRepo := repositories.NewGormGroupRepository(deps.DB)
	postRepo := repositories.NewGormPostRepository(deps.DB)
	commentRepo := repositories.NewGormCommentRepository(deps.DB)
	followRepo := repositories.NewGormFollowRepository(deps.DB)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, validator, cfg.SecretKey, cfg.SessionTTL)
	feedService := services.NewFeedService(postRepo, groupRepo, userRepo, followRepo, commentRepo, cfg.PostsPerPage)
	postService := services.NewPostService(postRepo, groupRepo, commentRepo, deps.Storage, validator)
	followService := services.NewFollowService(userRepo, followRepo)

	e.Use(middleware.Session(authService))
	if deps.Firebase != nil {
		e.Use(middleware.FirebaseSession(deps.Firebase, authService))
		logger.Info("firebase bearer tokens accepted")
	}

	loginRequired := middleware.LoginRequired(cfg.LoginURL)
	cachePage := middleware.CachePage(deps.Cache, cfg.CacheTTL, indexCachePrefix)

	e.GET("/health", handlers.HealthCheck(deps.DB))

	authHandler := handlers.NewAuthHandler(authService, deps.Firebase, cfg.IsProduction())
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	root := e.Group("")
	handlers.NewFeedHandler(feedService).RegisterFeedRoutes(root, cachePage, loginRequired)
	handlers.NewPostHandler(postService, feedService).RegisterPostRoutes(root, loginRequired)
	handlers.NewCommentHandler(postService).RegisterCommentRoutes(root, loginRequired)
	handlers.NewFollowHandler(followService).RegisterFollowRoutes(root, loginRequired)
	handlers.NewMediaHandler(deps.Storage).RegisterMediaRoutes(root)

	logger.Info("routes configured", zap.Int("count", len(e.Routes())))
}
