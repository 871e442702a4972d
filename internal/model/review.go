package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rating left by one user for one tour. The pair (Tour, User)
// is unique; the store enforces it with a compound index.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Review    string             `bson:"review" json:"review" validate:"required,max=200"`
	Rating    float64            `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Tour      primitive.ObjectID `bson:"tour" json:"tour" validate:"required"`
	User      primitive.ObjectID `bson:"user" json:"user" validate:"required"`
	Version   int                `bson:"__v" json:"-"`
}

func (r *Review) GetID() primitive.ObjectID { return r.ID }
func (r *Review) SetID(id primitive.ObjectID) { r.ID = id }

// PopulatedReview is a review with its author resolved. The outer User
// field shadows the embedded identifier when encoded.
type PopulatedReview struct {
	Review
	User *UserRef `json:"user"`
}

// RatingSummary is the derived aggregate cached on a tour.
type RatingSummary struct {
	Quantity int
	Average  float64
}

// Default rating values for a tour without reviews.
const (
	DefaultRatingAverage  = 4.5
	DefaultRatingQuantity = 0
)
