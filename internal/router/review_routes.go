package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterReviews registers review routes on g. It is mounted twice: on
// /reviews and on /tours/:tourId/reviews, where the tour comes from the
// path. All review routes require a session.
func RegisterReviews(g *echo.Group, r *handler.ReviewHandler, d Deps, purge echo.MiddlewareFunc) {
	g.Use(middleware.Protect(d.Auth))
	owners := middleware.RestrictTo(model.RoleUser, model.RoleAdmin)

	g.GET("", r.GetAll)
	g.POST("", r.CreateOne, middleware.RestrictTo(model.RoleUser), purge)
	g.GET("/:id", r.GetOne)
	g.PATCH("/:id", r.UpdateOne, owners, purge)
	g.DELETE("/:id", r.DeleteOne, owners, purge)
}
