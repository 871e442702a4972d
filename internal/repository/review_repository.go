package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/model"
)

// ReviewRepo stores reviews. One review per user and tour is enforced by a
// unique index.
type ReviewRepo struct {
	*Collection[model.Review]
}

func NewReviewRepo(db *mongo.Database) *ReviewRepo {
	return &ReviewRepo{newCollection[model.Review](db.Collection(database.Reviews), nil, nil)}
}

// Insert stamps and stores a new review.
func (r *ReviewRepo) Insert(ctx context.Context, rv *model.Review) error {
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	return r.Collection.Insert(ctx, rv)
}

// FindByTour lists every review of one tour.
func (r *ReviewRepo) FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]model.Review, error) {
	return r.find(ctx, bson.M{"tour": tourID}, nil)
}

// RatingStats recomputes the rating count and mean of one tour from its
// reviews. A tour without reviews gets the defaults.
func (r *ReviewRepo) RatingStats(ctx context.Context, tourID primitive.ObjectID) (model.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$tour",
			"nRating":   bson.M{"$sum": 1},
			"avgRating": bson.M{"$avg": "$rating"},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return model.RatingSummary{}, translate(err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		NRating   int     `bson:"nRating"`
		AvgRating float64 `bson:"avgRating"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return model.RatingSummary{}, translate(err)
	}
	if len(rows) == 0 {
		return model.RatingSummary{Quantity: model.DefaultRatingQuantity, Average: model.DefaultRatingAverage}, nil
	}
	return model.RatingSummary{Quantity: rows[0].NRating, Average: model.RoundRating(rows[0].AvgRating)}, nil
}
