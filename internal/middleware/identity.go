package middleware

// identity.go holds accessors for the identity stored by Protect and
// IsLoggedIn.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
)

// CurrentUser returns the signed-in user, nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ctxUser).(*model.User)
	return u
}

// userID returns the signed-in user's id or "guest".
func userID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	return "guest"
}
