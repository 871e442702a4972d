package handler

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/tour-booking/internal/model"
)

// UserRefs resolves user ids into embeddable references.
type UserRefs interface {
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[string]model.UserRef, error)
}

// ReviewLister lists the reviews of one tour.
type ReviewLister interface {
	FindByTour(ctx context.Context, tourID primitive.ObjectID) ([]model.Review, error)
}

// populateReviews attaches the author (name and photo) to every review.
// Reviews whose author no longer resolves keep a nil user.
func populateReviews(ctx context.Context, users UserRefs, reviews []model.Review) ([]model.PopulatedReview, error) {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.User)
	}
	refs, err := users.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.PopulatedReview, 0, len(reviews))
	for _, r := range reviews {
		pr := model.PopulatedReview{Review: r}
		if ref, ok := refs[r.User.Hex()]; ok {
			pr.User = &model.UserRef{ID: ref.ID, Name: ref.Name, Photo: ref.Photo}
		}
		out = append(out, pr)
	}
	return out, nil
}

// populateTour resolves the guides of t and attaches its reviews.
func populateTour(ctx context.Context, users UserRefs, reviews ReviewLister, t *model.Tour) (*model.PopulatedTour, error) {
	refs, err := users.FindRefs(ctx, t.Guides)
	if err != nil {
		return nil, err
	}
	guides := make([]model.UserRef, 0, len(t.Guides))
	for _, id := range t.Guides {
		if ref, ok := refs[id.Hex()]; ok {
			guides = append(guides, ref)
		}
	}

	list, err := reviews.FindByTour(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	populated, err := populateReviews(ctx, users, list)
	if err != nil {
		return nil, err
	}
	return &model.PopulatedTour{Tour: *t, Guides: guides, Reviews: populated}, nil
}
