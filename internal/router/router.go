package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Tours   *handler.TourHandler
	Reviews *handler.ReviewHandler
	Users   *handler.UserHandler
	Views   *handler.ViewHandler
}

// Deps carries the shared infrastructure the routes are wrapped in.
type Deps struct {
	Auth      middleware.Authenticator
	Redis     *redis.Client // nil disables rate limiting and caching
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Metrics   *middleware.Metrics // nil hides /metrics
	DB        handler.Pinger
	Log       *zap.Logger
}

// Register mounts every route of the application on e.
//
//	/healthz, /metrics        operational endpoints
//	/, /tour/:slug, /me       page models
//	/api/v1/{tours,users,reviews}
//
// Everything below /api shares one rate limiter.
func Register(e *echo.Echo, h Handlers, d Deps) {
	RegisterRoutes(e, h.Views, d)

	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	v1 := api.Group("/v1")

	purge := middleware.InvalidateCache(d.Cache, d.Redis, d.Log)
	RegisterTours(v1, h.Tours, h.Reviews, d, purge)
	RegisterReviews(v1.Group("/reviews"), h.Reviews, d, purge)
	RegisterUsers(v1, h.Auth, h.Users, d)
}

// RegisterRoutes registers the unauthenticated operational endpoints and
// the page models.
func RegisterRoutes(e *echo.Echo, v *handler.ViewHandler, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	loggedIn := middleware.IsLoggedIn(d.Auth)
	e.GET("/", v.Overview, loggedIn)
	e.GET("/tour/:slug", v.Tour, loggedIn)
	e.GET("/me", v.Account, middleware.Protect(d.Auth))
}
