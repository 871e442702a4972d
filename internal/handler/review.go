package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/service"
)

// RatingCalculator recomputes a tour's rating aggregate.
type RatingCalculator interface {
	CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) (model.RatingSummary, error)
}

// ReviewHandler serves /api/v1/reviews and /api/v1/tours/:tourId/reviews.
type ReviewHandler struct {
	*Factory[model.Review]
	Reviews Store[model.Review]
	Users   UserRefs
	Ratings RatingCalculator
}

func NewReviewHandler(reviews Store[model.Review], users UserRefs, ratings RatingCalculator) *ReviewHandler {
	h := &ReviewHandler{Reviews: reviews, Users: users, Ratings: ratings}
	h.Factory = NewFactory[model.Review](reviews, "data").
		Plural("reviews").
		Before(SetTourUserIDs).
		After(h.recalculate)
	return h
}

// SetTourUserIDs fills the tour from the nested route and the author from
// the signed-in user when the body leaves them out.
func SetTourUserIDs(c echo.Context, r *model.Review) error {
	if r.Tour.IsZero() && c.Param("tourId") != "" {
		id, err := repository.ParseID(c.Param("tourId"))
		if err != nil {
			return err
		}
		r.Tour = id
	}
	if r.User.IsZero() {
		if me := middleware.CurrentUser(c); me != nil {
			r.User = me.ID
		}
	}
	return nil
}

// previousTourKey holds the tour a review belonged to before an update.
const previousTourKey = "review.previousTour"

func (h *ReviewHandler) recalculate(c echo.Context, r *model.Review) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Ratings.CalcAverageRatings(ctx, r.Tour); err != nil {
		return err
	}
	if prev, ok := c.Get(previousTourKey).(primitive.ObjectID); ok && !prev.IsZero() && prev != r.Tour {
		_, err := h.Ratings.CalcAverageRatings(ctx, prev)
		return err
	}
	return nil
}

// UpdateOne updates a review. When the review moves to another tour both
// tours get their ratings recomputed.
func (h *ReviewHandler) UpdateOne(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	prev, err := h.Reviews.FindByID(ctx, c.Param("id"))
	cancel()
	if err != nil {
		return err
	}
	c.Set(previousTourKey, prev.Tour)
	return h.Factory.UpdateOne(c)
}

// GetAll lists reviews with their authors. On the nested route only the
// reviews of :tourId are returned.
func (h *ReviewHandler) GetAll(c echo.Context) error {
	features := query.Apply(c.QueryParams())
	if raw := c.Param("tourId"); raw != "" {
		id, err := repository.ParseID(raw)
		if err != nil {
			return err
		}
		features = features.Where("tour", id)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	reviews, err := h.Reviews.Find(ctx, features)
	if err != nil {
		return err
	}
	populated, err := populateReviews(ctx, h.Users, reviews)
	if err != nil {
		return err
	}
	shaped, err := shape(populated, features)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(reviews),
		"data":    echo.Map{"reviews": shaped},
	})
}

// GetOne returns one review with its author.
func (h *ReviewHandler) GetOne(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.Reviews.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	populated, err := populateReviews(ctx, h.Users, []model.Review{*r})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "data", populated[0])
}

var _ RatingCalculator = (*service.ReviewService)(nil)
