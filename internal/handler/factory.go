// Package handler exposes the HTTP handlers of the tours, users and reviews
// API. CRUD endpoints that behave the same for every entity are built from
// the generic Factory; entity handlers add the rest.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
)

// requestTimeout bounds every store round trip of a request.
const requestTimeout = 5 * time.Second

// Store is the persistence surface the generic handlers need.
type Store[T any] interface {
	Find(ctx context.Context, f query.Features) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc *T) error
	Replace(ctx context.Context, doc *T) error
	DeleteByID(ctx context.Context, id string) (*T, error)
}

// Hook runs around a write. Before hooks run after binding and before
// validation; after hooks run once the write succeeded.
type Hook[T any] func(c echo.Context, doc *T) error

// Factory builds the create, read, update and delete handlers for one
// entity type.
type Factory[T any] struct {
	store   Store[T]
	key     string
	listKey string
	before  []Hook[T]
	after   []Hook[T]
}

// NewFactory returns handlers over store. key names the document inside the
// response's data object.
func NewFactory[T any](store Store[T], key string) *Factory[T] {
	return &Factory[T]{store: store, key: key, listKey: key}
}

// Plural sets the key used by GetAll.
func (f *Factory[T]) Plural(key string) *Factory[T] {
	f.listKey = key
	return f
}

// Before adds a hook that runs before validation on create and update.
func (f *Factory[T]) Before(h Hook[T]) *Factory[T] {
	f.before = append(f.before, h)
	return f
}

// After adds a hook that runs after every successful create, update and
// delete.
func (f *Factory[T]) After(h Hook[T]) *Factory[T] {
	f.after = append(f.after, h)
	return f
}

// CreateOne persists a new document from the request body.
func (f *Factory[T]) CreateOne(c echo.Context) error {
	doc := new(T)
	if err := bindBody(c, doc); err != nil {
		return err
	}
	resetID(doc)
	if err := f.runHooks(c, f.before, doc); err != nil {
		return err
	}
	if err := c.Validate(doc); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := f.store.Insert(ctx, doc); err != nil {
		return err
	}
	if err := f.runHooks(c, f.after, doc); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, f.key, doc)
}

// UpdateOne applies the request body as a partial update to the document
// with the :id path parameter and re-runs validation on the result.
func (f *Factory[T]) UpdateOne(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	doc, err := f.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	id := documentID(doc)
	if err := bindBody(c, doc); err != nil {
		return err
	}
	setID(doc, id)
	if err := f.runHooks(c, f.before, doc); err != nil {
		return err
	}
	if err := c.Validate(doc); err != nil {
		return err
	}
	if err := f.store.Replace(ctx, doc); err != nil {
		return err
	}
	if err := f.runHooks(c, f.after, doc); err != nil {
		return err
	}
	return respond(c, http.StatusOK, f.key, doc)
}

// DeleteOne removes the document with the :id path parameter.
func (f *Factory[T]) DeleteOne(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	doc, err := f.store.DeleteByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if err := f.runHooks(c, f.after, doc); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetOne returns the document with the :id path parameter.
func (f *Factory[T]) GetOne(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	doc, err := f.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, f.key, doc)
}

// GetAll lists documents through the query feature pipeline.
func (f *Factory[T]) GetAll(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	features := query.Apply(c.QueryParams())
	docs, err := f.store.Find(ctx, features)
	if err != nil {
		return err
	}
	shaped, err := shape(docs, features)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(docs),
		"data":    echo.Map{f.listKey: shaped},
	})
}

func (f *Factory[T]) runHooks(c echo.Context, hooks []Hook[T], doc *T) error {
	for _, h := range hooks {
		if err := h(c, doc); err != nil {
			return err
		}
	}
	return nil
}

func respond(c echo.Context, code int, key string, v any) error {
	return c.JSON(code, echo.Map{"status": "success", "data": echo.Map{key: v}})
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bindBody decodes only the JSON body; path and query parameters never
// reach the document.
func bindBody(c echo.Context, v any) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}

func documentID(doc any) primitive.ObjectID {
	if d, ok := doc.(model.Document); ok {
		return d.GetID()
	}
	return primitive.NilObjectID
}

func setID(doc any, id primitive.ObjectID) {
	if d, ok := doc.(model.Document); ok {
		d.SetID(id)
	}
}

func resetID(doc any) { setID(doc, primitive.NilObjectID) }

// shape trims encoded documents to the fields the client selected. Without
// a fields parameter the documents are returned untouched.
func shape[T any](docs []T, f query.Features) (any, error) {
	include, exclude := f.Fields(), excluded(f)
	if len(include) == 0 && len(exclude) == 0 {
		return docs, nil
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	keep := map[string]bool{"id": true}
	for _, name := range include {
		keep[name] = true
	}
	for _, row := range rows {
		for k := range row {
			if (len(include) > 0 && !keep[k]) || exclude[k] {
				delete(row, k)
			}
		}
	}
	return rows, nil
}

func excluded(f query.Features) map[string]bool {
	if f.Params().Get("fields") == "" {
		return nil
	}
	out := map[string]bool{}
	for _, e := range f.Projection() {
		if v, ok := e.Value.(int); ok && v == 0 {
			out[e.Key] = true
		}
	}
	return out
}
