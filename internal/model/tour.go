package model

import (
	"math"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty tiers accepted for a tour.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Location is a GeoJSON point with descriptive metadata. Coordinates are
// stored as [longitude, latitude].
type Location struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"omitempty,len=2"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// Tour represents a bookable tour as stored in the `tours` collection.
// RatingAverage and RatingQuantity are owned by the review service and
// recomputed after every review write. DurationWeeks is derived on load.
type Tour struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name" validate:"required,min=10,max=40"`
	Slug           string               `bson:"slug" json:"slug"`
	Duration       float64              `bson:"duration" json:"duration" validate:"required,gt=0"`
	DurationWeeks  float64              `bson:"-" json:"durationWeeks"`
	MaxGroupSize   int                  `bson:"maxGroupSize" json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty     string               `bson:"difficulty" json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingAverage  float64              `bson:"ratingAverage" json:"ratingAverage" validate:"min=1,max=5"`
	RatingQuantity int                  `bson:"ratingQuantity" json:"ratingQuantity" validate:"min=0"`
	Price          float64              `bson:"price" json:"price" validate:"required,gt=0"`
	PriceDiscount  float64              `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,ltfield=Price"`
	Summary        string               `bson:"summary" json:"summary" validate:"required"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover     string               `bson:"imageCover" json:"imageCover" validate:"required"`
	Images         []string             `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	StartDates     []time.Time          `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour     bool                 `bson:"secretTour" json:"secretTour"`
	StartLocation  *Location            `bson:"startLocation,omitempty" json:"startLocation,omitempty" validate:"omitempty"`
	Locations      []Location           `bson:"locations,omitempty" json:"locations,omitempty" validate:"dive"`
	Guides         []primitive.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`
	Version        int                  `bson:"__v" json:"-"`
}

func (t *Tour) GetID() primitive.ObjectID { return t.ID }
func (t *Tour) SetID(id primitive.ObjectID) { t.ID = id }

// Normalize trims text fields, fills defaults and regenerates the slug.
// It runs before every validation and save.
func (t *Tour) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = slug.Make(t.Name)
	if t.RatingAverage == 0 {
		t.RatingAverage = DefaultRatingAverage
	}
	t.RatingAverage = RoundRating(t.RatingAverage)
	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
	t.Derive()
}

// Derive recomputes fields that are never persisted.
func (t *Tour) Derive() {
	t.DurationWeeks = t.Duration / 7
}

// RoundRating rounds a rating to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// PopulatedTour is a tour with its guides resolved and its reviews
// attached, returned by the single-tour endpoints.
type PopulatedTour struct {
	Tour
	Guides  []UserRef         `json:"guides"`
	Reviews []PopulatedReview `json:"reviews"`
}

// TourDistance is one row of the distances-to-point report.
type TourDistance struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Distance float64            `bson:"distance" json:"distance"`
}

// TourStats is one difficulty tier in the tour statistics report.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlan counts tour starts in one calendar month.
type MonthlyPlan struct {
	Month         int      `bson:"month" json:"month"`
	NumTourStarts int      `bson:"numTourStarts" json:"numTourStarts"`
	Tours         []string `bson:"tours" json:"tours"`
}
