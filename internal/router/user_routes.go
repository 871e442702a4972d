package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterUsers registers /users: the open auth flows, the self-service
// routes for any signed-in user and the admin-only user management.
func RegisterUsers(v1 *echo.Group, a *handler.AuthHandler, u *handler.UserHandler, d Deps) {
	g := v1.Group("/users")

	// ---- Open ----
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.GET("/logout", a.Logout)
	g.POST("/forgotPassword", a.ForgotPassword)
	g.PATCH("/resetPassword/:token", a.ResetPassword)

	// ---- Signed in ----
	me := g.Group("", middleware.Protect(d.Auth))
	me.PATCH("/updateMyPassword", a.UpdateMyPassword)
	me.GET("/me", u.GetMe)
	me.PATCH("/updateMe", u.UpdateMe)
	me.DELETE("/deleteMe", u.DeleteMe)

	// ---- Admin ----
	admin := me.Group("", middleware.RestrictTo(model.RoleAdmin))
	admin.GET("", u.GetAll)
	admin.POST("", u.CreateUser)
	admin.GET("/:id", u.GetOne)
	admin.PATCH("/:id", u.UpdateOne)
	admin.DELETE("/:id", u.DeleteOne)
}
