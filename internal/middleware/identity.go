package middleware

// identity.go holds the context helpers shared by the middleware and the
// handlers.  JWTAuth stores the verified caller under identityKey; handlers
// on protected routes read it back with IdentityFrom.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
)

const identityKey = "identity"

// SetIdentity stores the verified caller on c.
func SetIdentity(c echo.Context, id auth.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the caller stored by JWTAuth.
func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok && id.ID != 0
}

// userID returns the caller id as a string, or "guest" when the request
// is anonymous.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return strconv.FormatUint(id.ID, 10)
	}
	return "guest"
}
