package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
)

// Collection is the CRUD core shared by the user, tour and review stores.
// T is a document struct whose pointer implements model.Document.
//
// scope is ANDed into every read and delete, so a store can hide documents
// (inactive users) from all lookups. afterLoad runs on every decoded
// document and recomputes derived fields.
type Collection[T any] struct {
	coll      *mongo.Collection
	scope     bson.M
	afterLoad func(*T)
}

func newCollection[T any](coll *mongo.Collection, scope bson.M, afterLoad func(*T)) *Collection[T] {
	return &Collection[T]{coll: coll, scope: scope, afterLoad: afterLoad}
}

// ParseID converts a hex identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &InvalidIDError{Value: id}
	}
	return oid, nil
}

// Find runs the criteria, sort, projection and paging carried by f.
func (r *Collection[T]) Find(ctx context.Context, f query.Features) ([]T, error) {
	return r.find(ctx, f.Criteria(), f.FindOptions())
}

// FindOne returns the first document matching filter.
func (r *Collection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.coll.FindOne(ctx, r.where(filter)).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	r.loaded(&doc)
	return &doc, nil
}

// FindByID returns the document with the given hex identifier.
func (r *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, bson.M{"_id": oid})
}

// Insert stores doc, assigning a fresh ObjectID when it has none.
func (r *Collection[T]) Insert(ctx context.Context, doc *T) error {
	if d, ok := any(doc).(model.Document); ok && d.GetID().IsZero() {
		d.SetID(primitive.NewObjectID())
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	r.loaded(doc)
	return nil
}

// Replace overwrites the stored document with the same identifier.
func (r *Collection[T]) Replace(ctx context.Context, doc *T) error {
	d, ok := any(doc).(model.Document)
	if !ok || d.GetID().IsZero() {
		return ErrNotFound
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.GetID()}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	r.loaded(doc)
	return nil
}

// Set updates individual fields without loading or validating the
// document.
func (r *Collection[T]) Set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Unset removes fields from a document without loading or validating it.
func (r *Collection[T]) Unset(ctx context.Context, id primitive.ObjectID, fields ...string) error {
	unset := bson.M{}
	for _, f := range fields {
		unset[f] = ""
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": unset}); err != nil {
		return translate(err)
	}
	return nil
}

// DeleteByID removes the document and returns it as it was before the
// delete.
func (r *Collection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var doc T
	if err := r.coll.FindOneAndDelete(ctx, r.where(bson.M{"_id": oid})).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	r.loaded(&doc)
	return &doc, nil
}

// DeleteAll removes every document regardless of scope. Used by the seed
// command.
func (r *Collection[T]) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

func (r *Collection[T]) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := r.coll.Find(ctx, r.where(filter), opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err)
	}
	for i := range out {
		r.loaded(&out[i])
	}
	return out, nil
}

func (r *Collection[T]) where(filter bson.M) bson.M {
	switch {
	case len(r.scope) == 0 && filter == nil:
		return bson.M{}
	case len(r.scope) == 0:
		return filter
	case len(filter) == 0:
		return r.scope
	}
	return bson.M{"$and": bson.A{r.scope, filter}}
}

func (r *Collection[T]) loaded(doc *T) {
	if r.afterLoad != nil {
		r.afterLoad(doc)
	}
}
