package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/model"
)

// MsgForbidden is returned when the signed-in user's role is not allowed.
const MsgForbidden = "You do not have permission to perform this action"

// Allowed reports whether actual is one of allowed.
func Allowed(allowed []model.Role, actual model.Role) bool {
	for _, r := range allowed {
		if r == actual {
			return true
		}
	}
	return false
}

// RestrictTo rejects users whose role is not in roles. It must run after
// Protect.
func RestrictTo(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(model.Role)
			if !Allowed(roles, role) {
				return apperr.Forbidden(MsgForbidden)
			}
			return next(c)
		}
	}
}
