package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterTours registers /tours and the reviews nested below a tour.
// Public reads are served through the response cache; every write purges
// it.
func RegisterTours(v1 *echo.Group, t *handler.TourHandler, r *handler.ReviewHandler, d Deps, purge echo.MiddlewareFunc) {
	g := v1.Group("/tours")
	RegisterReviews(g.Group("/:tourId/reviews"), r, d, purge)

	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	protect := middleware.Protect(d.Auth)
	editors := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)

	// ---- Reports ----
	g.GET("/top-5-cheap", t.GetAll, handler.AliasTopTours, cache)
	g.GET("/tour-stats", t.Stats, cache)
	g.GET("/monthly-plan/:year", t.MonthlyPlan, protect,
		middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide, model.RoleGuide))

	// ---- Geo ----
	g.GET("/tours-within/:distance/center/:latlng/unit/:unit", t.Within, cache)
	g.GET("/distances/:latlng/unit/:unit", t.Distances, cache)

	// ---- CRUD ----
	g.GET("", t.GetAll, cache)
	g.POST("", t.CreateOne, protect, editors, purge)
	g.GET("/:id", t.GetTour, cache)
	g.PATCH("/:id", t.UpdateOne, protect, editors, purge)
	g.DELETE("/:id", t.DeleteOne, protect, editors, purge)
}
