package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// JWTAuth rejects requests without a valid bearer token.  Every failure
// gets the same 401 body; the specific reason is logged at debug level
// only.
func JWTAuth(v TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				log.Debug().Str("path", c.Path()).Msg("missing bearer token")
				return unauthorized(c)
			}
			id, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
				return unauthorized(c)
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="recipes"`)
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
