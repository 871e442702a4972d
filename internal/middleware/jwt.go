package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
)

// CookieName is the cookie carrying the session token for browsers.
const CookieName = "jwt"

// Context keys set by Protect and IsLoggedIn.
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Authenticator resolves the user behind a raw session token.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.User, error)
}

// Protect requires a valid session. The token is read from an
// "Authorization: Bearer" header, falling back to the jwt cookie. The
// resolved user is stored in the context for handlers; any failure is
// returned to the central error handler.
func Protect(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := auth.Authenticate(c.Request().Context(), extractToken(c))
			if err != nil {
				return err
			}
			setUser(c, u)
			return next(c)
		}
	}
}

// IsLoggedIn resolves the user from the jwt cookie when possible and never
// fails; pages render for anonymous visitors too.
func IsLoggedIn(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				if u, err := auth.Authenticate(c.Request().Context(), ck.Value); err == nil {
					setUser(c, u)
				}
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

func setUser(c echo.Context, u *model.User) {
	c.Set(ctxUser, u)
	c.Set(ctxUserID, u.ID.Hex())
	c.Set(ctxRole, u.Role)
}
