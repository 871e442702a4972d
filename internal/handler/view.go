package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/query"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// ViewHandler returns the page models of the website. Rendering happens
// in the client; these endpoints only assemble the data.
type ViewHandler struct {
	Tours   TourStore
	Reviews ReviewLister
	Users   UserRefs
}

func NewViewHandler(tours TourStore, reviews ReviewLister, users UserRefs) *ViewHandler {
	return &ViewHandler{Tours: tours, Reviews: reviews, Users: users}
}

// Overview is the model of the landing page.
func (h *ViewHandler) Overview(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	tours, err := h.Tours.Find(ctx, query.Apply(url.Values{}))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title": "All Tours",
		"tours": tours,
		"user":  middleware.CurrentUser(c),
	})
}

// Tour is the model of a tour detail page.
func (h *ViewHandler) Tour(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tours.FindBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("There is no tour with that name.")
	}
	if err != nil {
		return err
	}
	populated, err := populateTour(ctx, h.Users, h.Reviews, t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title": populated.Name + " Tour",
		"tour":  populated,
		"user":  middleware.CurrentUser(c),
	})
}

// Account is the model of the signed-in user's account page.
func (h *ViewHandler) Account(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"title": "Your account",
		"user":  middleware.CurrentUser(c),
	})
}
