package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
)

// publicTours hides secret tours from listings.
var publicTours = bson.M{"secretTour": bson.M{"$ne": true}}

// TourRepo stores tours and runs the tour reports.
type TourRepo struct {
	*Collection[model.Tour]
}

func NewTourRepo(db *mongo.Database) *TourRepo {
	return &TourRepo{newCollection[model.Tour](
		db.Collection(database.Tours),
		nil,
		(*model.Tour).Derive,
	)}
}

// Find lists tours matching f. Secret tours are never listed.
func (r *TourRepo) Find(ctx context.Context, f query.Features) ([]model.Tour, error) {
	return r.Collection.Find(ctx, f.Where("secretTour", publicTours["secretTour"]))
}

// Insert normalizes and stores a new tour.
func (r *TourRepo) Insert(ctx context.Context, t *model.Tour) error {
	t.Normalize()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return r.Collection.Insert(ctx, t)
}

// Replace normalizes and overwrites a tour.
func (r *TourRepo) Replace(ctx context.Context, t *model.Tour) error {
	t.Normalize()
	return r.Collection.Replace(ctx, t)
}

// FindBySlug returns the public tour with the given slug.
func (r *TourRepo) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	return r.FindOne(ctx, bson.M{"slug": slug, "secretTour": publicTours["secretTour"]})
}

// SetRatings stores the rating aggregate derived from a tour's reviews.
func (r *TourRepo) SetRatings(ctx context.Context, id primitive.ObjectID, s model.RatingSummary) error {
	return r.Set(ctx, id, bson.M{"ratingQuantity": s.Quantity, "ratingAverage": s.Average})
}

// Within lists public tours whose start location lies inside a spherical
// cap of the given radius (in radians) around lng/lat.
func (r *TourRepo) Within(ctx context.Context, lng, lat, radius float64) ([]model.Tour, error) {
	return r.find(ctx, bson.M{
		"secretTour": publicTours["secretTour"],
		"startLocation": bson.M{"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, radius},
		}},
	}, nil)
}

// Distances reports the distance from lng/lat to every public tour's start
// location, nearest first. multiplier converts meters into the wanted unit.
func (r *TourRepo) Distances(ctx context.Context, lng, lat, multiplier float64) ([]model.TourDistance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":               bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
			"distanceField":      "distance",
			"distanceMultiplier": multiplier,
			"query":              publicTours,
		}}},
		{{Key: "$project", Value: bson.M{"name": 1, "distance": 1}}},
	}
	out := make([]model.TourDistance, 0)
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats groups tours rated 4.5 or better by difficulty, cheapest tier
// first.
func (r *TourRepo) Stats(ctx context.Context) ([]model.TourStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ratingAverage": bson.M{"$gte": 4.5}}}},
		{{Key: "$group", Value: bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": 1}}},
	}
	out := make([]model.TourStats, 0)
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyPlan counts tour starts per month of year. Only the six busiest
// months are kept, ordered by ascending count and then by month.
func (r *TourRepo) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	out := make([]model.MonthlyPlan, 0)
	if err := r.aggregate(ctx, monthlyPlanPipeline(year), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func monthlyPlanPipeline(year int) mongo.Pipeline {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.M{"startDates": bson.M{"$gte": from, "$lt": from.AddDate(1, 0, 0)}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"$month": "$startDates"},
			"numTourStarts": bson.M{"$sum": 1},
			"tours":         bson.M{"$push": "$name"},
		}}},
		{{Key: "$addFields", Value: bson.M{"month": "$_id"}}},
		{{Key: "$project", Value: bson.M{"_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}}},
		{{Key: "$limit", Value: 6}},
		{{Key: "$sort", Value: bson.D{{Key: "numTourStarts", Value: 1}, {Key: "month", Value: 1}}}},
	}
}

func (r *TourRepo) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return translate(err)
	}
	defer cur.Close(ctx)
	return translate(cur.All(ctx, out))
}
