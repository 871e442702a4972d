package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// Start dates in the data files come in several shapes.
var startDateLayouts = []string{time.RFC3339, "2006-01-02,15:04", "2006-01-02T15:04", "2006-01-02"}

// tourRecord is a tour as written in tours.json. Files use "_id" and
// free-form start dates.
type tourRecord struct {
	RawID string `json:"_id"`
	model.Tour
	StartDates []string `json:"startDates"`
}

type userRecord struct {
	RawID string `json:"_id"`
	model.User
	Password string `json:"password"`
	Active   *bool  `json:"active"`
}

type reviewRecord struct {
	RawID string `json:"_id"`
	model.Review
}

func readJSON(dir, name string, out any) error {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func objectID(raw string) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(raw)
}

func parseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized start date %q", s)
}

func (r tourRecord) toModel() (model.Tour, error) {
	t := r.Tour
	id, err := objectID(r.RawID)
	if err != nil {
		return t, err
	}
	t.ID = id
	t.StartDates = nil
	for _, s := range r.StartDates {
		d, err := parseStartDate(s)
		if err != nil {
			return t, err
		}
		t.StartDates = append(t.StartDates, d)
	}
	return t, nil
}

// toModel hashes plaintext passwords; bcrypt hashes are stored as they are.
func (r userRecord) toModel(cost int) (model.User, error) {
	u := r.User
	id, err := objectID(r.RawID)
	if err != nil {
		return u, err
	}
	u.ID = id
	u.Active = r.Active == nil || *r.Active
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.Password = r.Password
	if !strings.HasPrefix(r.Password, "$2") {
		if u.Password, err = utils.HashPassword(r.Password, cost); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (r reviewRecord) toModel() (model.Review, error) {
	rv := r.Review
	id, err := objectID(r.RawID)
	rv.ID = id
	return rv, err
}

func importData(ctx context.Context, s stores, dir string) error {
	var tours []tourRecord
	var users []userRecord
	var reviews []reviewRecord
	for name, out := range map[string]any{"tours.json": &tours, "users.json": &users, "reviews.json": &reviews} {
		if err := readJSON(dir, name, out); err != nil {
			return err
		}
	}

	for _, rec := range tours {
		t, err := rec.toModel()
		if err != nil {
			return err
		}
		if err := s.tours.Insert(ctx, &t); err != nil {
			return fmt.Errorf("tour %q: %w", t.Name, err)
		}
	}
	for _, rec := range users {
		u, err := rec.toModel(s.cost)
		if err != nil {
			return err
		}
		if err := s.users.Insert(ctx, &u); err != nil {
			return fmt.Errorf("user %q: %w", u.Email, err)
		}
	}
	rated := map[primitive.ObjectID]bool{}
	for _, rec := range reviews {
		rv, err := rec.toModel()
		if err != nil {
			return err
		}
		if err := s.reviews.Insert(ctx, &rv); err != nil {
			return fmt.Errorf("review %s: %w", rv.ID.Hex(), err)
		}
		rated[rv.Tour] = true
	}
	for id := range rated {
		if _, err := s.ratings.CalcAverageRatings(ctx, id); err != nil {
			return err
		}
	}

	s.log.Info("data loaded",
		zap.Int("tours", len(tours)),
		zap.Int("users", len(users)),
		zap.Int("reviews", len(reviews)),
	)
	return nil
}

func deleteData(ctx context.Context, s stores) error {
	nt, err := s.tours.DeleteAll(ctx)
	if err != nil {
		return err
	}
	nr, err := s.reviews.DeleteAll(ctx)
	if err != nil {
		return err
	}
	nu, err := s.users.DeleteAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info("data deleted", zap.Int64("tours", nt), zap.Int64("reviews", nr), zap.Int64("users", nu))
	return nil
}
