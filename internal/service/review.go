package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/model"
)

// RatingSource computes the rating aggregate of a tour from its reviews.
type RatingSource interface {
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (model.RatingSummary, error)
}

// RatingSink stores a tour's rating aggregate.
type RatingSink interface {
	SetRatings(ctx context.Context, id primitive.ObjectID, s model.RatingSummary) error
}

// ReviewService keeps each tour's ratingAverage and ratingQuantity in step
// with its reviews. Handlers call CalcAverageRatings after every review
// create, update and delete.
type ReviewService struct {
	reviews RatingSource
	tours   RatingSink
	log     *zap.Logger
}

func NewReviewService(reviews RatingSource, tours RatingSink, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours, log: log}
}

// CalcAverageRatings recomputes the aggregate of tourID from scratch and
// stores it. A tour without reviews falls back to 4.5 / 0.
func (s *ReviewService) CalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) (model.RatingSummary, error) {
	summary, err := s.reviews.RatingStats(ctx, tourID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	if summary.Quantity == 0 {
		summary = model.RatingSummary{Quantity: model.DefaultRatingQuantity, Average: model.DefaultRatingAverage}
	}
	summary.Average = model.RoundRating(summary.Average)
	if err := s.tours.SetRatings(ctx, tourID, summary); err != nil {
		return model.RatingSummary{}, err
	}
	s.log.Debug("ratings recalculated",
		zap.String("tour_id", tourID.Hex()),
		zap.Int("quantity", summary.Quantity),
		zap.Float64("average", summary.Average),
	)
	return summary, nil
}
