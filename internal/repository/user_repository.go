package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/model"
)

// UserRepo stores accounts. Deactivated users are excluded from every
// lookup.
type UserRepo struct {
	*Collection[model.User]
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{newCollection[model.User](
		db.Collection(database.Users),
		bson.M{"active": bson.M{"$ne": false}},
		markActive,
	)}
}

// FindByEmail fetches an active user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.FindOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

// FindByResetToken fetches the user holding the hashed reset token, provided
// the token has not expired at now.
func (r *UserRepo) FindByResetToken(ctx context.Context, hash string, now time.Time) (*model.User, error) {
	return r.FindOne(ctx, bson.M{
		"passwordResetToken":   hash,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

// FindRefs resolves a set of user ids into embeddable references.
func (r *UserRepo) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[string]model.UserRef, error) {
	out := make(map[string]model.UserRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID.Hex()] = model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Photo: u.Photo}
	}
	return out, nil
}

// markActive runs on every loaded user. Only active users pass the scope,
// and imported documents may lack the flag entirely.
func markActive(u *model.User) { u.Active = true }

// Deactivate soft-deletes a user; it disappears from every lookup.
func (r *UserRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Set(ctx, id, bson.M{"active": false})
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
