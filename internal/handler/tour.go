package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// MsgBadLatLng is returned when a center point cannot be parsed.
const MsgBadLatLng = "Please provide latitude and longitude in the format lat,lng"

// TourStore is the persistence surface of the tour endpoints.
type TourStore interface {
	Store[model.Tour]
	FindBySlug(ctx context.Context, slug string) (*model.Tour, error)
	Within(ctx context.Context, lng, lat, radius float64) ([]model.Tour, error)
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]model.TourDistance, error)
	Stats(ctx context.Context) ([]model.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
}

// TourHandler serves /api/v1/tours. Create, update and delete come from
// the embedded factory.
type TourHandler struct {
	*Factory[model.Tour]
	Tours   TourStore
	Reviews ReviewLister
	Users   UserRefs
}

func NewTourHandler(tours TourStore, reviews ReviewLister, users UserRefs) *TourHandler {
	return &TourHandler{
		Factory: NewFactory[model.Tour](tours, "tour").Plural("tours").Before(normalizeTour),
		Tours:   tours,
		Reviews: reviews,
		Users:   users,
	}
}

// normalizeTour trims, slugs and fills rating defaults before validation.
func normalizeTour(_ echo.Context, t *model.Tour) error {
	t.Normalize()
	return nil
}

// AliasTopTours prefills the query for the five best rated, cheapest tours.
func AliasTopTours(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := c.QueryParams()
		q.Set("limit", "5")
		q.Set("sort", "-ratingAverage,price")
		q.Set("fields", "name,price,ratingAverage,summary,difficulty")
		c.Request().URL.RawQuery = q.Encode()
		return next(c)
	}
}

// GetAll lists public tours through the query feature pipeline.
func (h *TourHandler) GetAll(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	features := query.Apply(c.QueryParams())
	tours, err := h.Tours.Find(ctx, features)
	if err != nil {
		return err
	}
	shaped, err := shape(tours, features)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"requestedAt": time.Now().UTC().Format(time.RFC3339),
		"results":     len(tours),
		"data":        echo.Map{"tours": shaped},
	})
}

// GetTour returns one tour with its guides and reviews populated.
func (h *TourHandler) GetTour(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tours.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	populated, err := populateTour(ctx, h.Users, h.Reviews, t)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tour", populated)
}

// Stats reports per-difficulty aggregates over well rated tours.
func (h *TourHandler) Stats(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	stats, err := h.Tours.Stats(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "stats", stats)
}

// MonthlyPlan reports the busiest months of :year by tour starts.
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		return apperr.BadRequest("Invalid year: " + c.Param("year"))
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	plan, err := h.Tours.MonthlyPlan(ctx, year)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "plan", plan)
}

// Within lists tours starting inside :distance (in :unit) of :latlng.
func (h *TourHandler) Within(c echo.Context) error {
	lat, lng, err := utils.ParseLatLng(c.Param("latlng"))
	if err != nil {
		return apperr.Wrap(err, http.StatusBadRequest, MsgBadLatLng)
	}
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance <= 0 {
		return apperr.BadRequest("Please provide a positive distance")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	tours, err := h.Tours.Within(ctx, lng, lat, utils.RadiusRadians(distance, c.Param("unit")))
	if err != nil {
		return err
	}
	return listed(c, len(tours), tours)
}

// Distances lists every public tour with its distance from :latlng in
// :unit.
func (h *TourHandler) Distances(c echo.Context) error {
	lat, lng, err := utils.ParseLatLng(c.Param("latlng"))
	if err != nil {
		return apperr.Wrap(err, http.StatusBadRequest, MsgBadLatLng)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	distances, err := h.Tours.Distances(ctx, lng, lat, utils.DistanceMultiplier(c.Param("unit")))
	if err != nil {
		return err
	}
	return listed(c, len(distances), distances)
}

func listed(c echo.Context, n int, v any) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": n,
		"data":    echo.Map{"data": v},
	})
}
