package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/middleware"
	"github.com/iliyamo/recipe-sharing-api/internal/model"
	"github.com/iliyamo/recipe-sharing-api/internal/repository"
)

// dbTimeout bounds every repository call made on behalf of a request.
const dbTimeout = 5 * time.Second

// fail writes the response for err.  Domain errors become client errors;
// anything unrecognised is logged with its cause and reported as a bare 500.
func fail(c echo.Context, log zerolog.Logger, err error) error {
	var ve *model.ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, repository.ErrUnknownCategory):
		return fail(c, log, model.NewValidationError("kategoriId", "unknown category"))
	case errors.Is(err, repository.ErrCategoryInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "category in use"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, auth.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.As(err, &he) && he.Code < http.StatusInternalServerError:
		// Bind errors: malformed JSON or a value of the wrong type.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	log.Error().Err(err).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// bind decodes the body into dst and runs the registered validator.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, model.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// caller returns the identity stored by the JWT middleware.
func caller(c echo.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return id, nil
}
