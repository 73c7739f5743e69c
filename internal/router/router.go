// Package router builds the echo instance: global middleware, handler
// wiring and route registration.
package router

import (
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/config"
	"github.com/iliyamo/recipe-sharing-api/internal/handler"
	"github.com/iliyamo/recipe-sharing-api/internal/middleware"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

// Deps is everything New needs.  Redis and Publisher may be nil; the rate
// limiter and cache then pass through and events are dropped.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        *sqlx.DB
	Redis     *redis.Client
	Publisher service.Publisher
	Log       zerolog.Logger
}

// New returns a fully routed echo instance.
func New(d Deps) (*echo.Echo, error) {
	hasher, err := auth.NewPasswordHasher(d.Config.PBKDF2Iterations)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    d.Config.JWTSecret,
		Issuer:    d.Config.JWTIssuer,
		Audience:  d.Config.JWTAudience,
		TTL:       d.Config.TokenTTL,
		ClockSkew: d.Config.ClockSkew,
	})
	if err != nil {
		return nil, err
	}
	if d.Publisher == nil {
		d.Publisher = service.NopPublisher{}
	}

	users := repository.NewUserRepo(d.DB)
	recipes := repository.NewRecipeRepo(d.DB)
	categories := repository.NewCategoryRepo(d.DB)
	interactions := repository.NewInteractionRepo(d.DB)

	authH, err := handler.NewAuthHandler(users, hasher, tokens, d.Publisher, d.Log)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = errorHandler(d.Log)

	e.Use(
		echomw.Recover(),
		echomw.RequestID(),
		middleware.RequestLogger(d.Log),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: d.Config.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
		middleware.InvalidateOnWrite(d.Cache, d.Redis, d.Log),
	)

	jwt := middleware.JWTAuth(tokens, d.Log)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, authH, jwt, middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	RegisterRecipes(e,
		handler.NewRecipeHandler(recipes, d.Publisher, d.Log),
		handler.NewInteractionHandler(interactions, recipes, d.Publisher, d.Log),
		jwt, cache)
	RegisterCategories(e, handler.NewCategoryHandler(categories, d.Log), cache)
	return e, nil
}

// RegisterRoutes registers routes that need neither a token nor a handler
// struct.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers /auth.  Register and login are rate limited;
// change-password and me need a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwt, limiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.PUT("/change-password", a.ChangePassword, jwt)
	g.GET("/me", a.Me, jwt)
}

// errorHandler renders echo's own errors (unknown route, wrong method,
// panics caught by Recover) in the same {"error": ...} shape the handlers use.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			code = he.Code
			msg = http.StatusText(code)
		} else {
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}
