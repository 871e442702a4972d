package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/query"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// memStore is an in-memory Store keyed by document id.
type memStore[T any] struct {
	mu   sync.Mutex
	docs []T
	last query.Features
}

func idOf[T any](doc *T) primitive.ObjectID { return any(doc).(model.Document).GetID() }

func (m *memStore[T]) Find(_ context.Context, f query.Features) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = f
	return append([]T(nil), m.docs...), nil
}

func (m *memStore[T]) FindByID(_ context.Context, id string) (*T, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if idOf(&m.docs[i]) == oid {
			doc := m.docs[i]
			return &doc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore[T]) Insert(_ context.Context, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	any(doc).(model.Document).SetID(primitive.NewObjectID())
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *memStore[T]) Replace(_ context.Context, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if idOf(&m.docs[i]) == idOf(doc) {
			m.docs[i] = *doc
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore[T]) DeleteByID(_ context.Context, id string) (*T, error) {
	oid, err := repository.ParseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if idOf(&m.docs[i]) == oid {
			doc := m.docs[i]
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return &doc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore[T]) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// memUsers backs both the auth service and the user handlers.
type memUsers struct {
	memStore[model.User]
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.docs {
		if u.Email == repository.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByResetToken(_ context.Context, hash string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.docs {
		if u.PasswordResetToken == hash && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Set(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	return m.update(id, func(u *model.User) {
		if v, ok := fields["name"].(string); ok {
			u.Name = v
		}
		if v, ok := fields["email"].(string); ok {
			u.Email = v
		}
		if v, ok := fields["photo"].(string); ok {
			u.Photo = v
		}
		if v, ok := fields["passwordResetToken"].(string); ok {
			u.PasswordResetToken = v
		}
		if v, ok := fields["passwordResetExpires"].(time.Time); ok {
			u.PasswordResetExpires = &v
		}
	})
}

func (m *memUsers) Unset(_ context.Context, id primitive.ObjectID, _ ...string) error {
	return m.update(id, (*model.User).ClearResetToken)
}

// Deactivate drops the user, matching the active scope of the real store.
func (m *memUsers) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.DeleteByID(ctx, id.Hex())
	return err
}

func (m *memUsers) FindRefs(_ context.Context, ids []primitive.ObjectID) (map[string]model.UserRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]model.UserRef{}
	for _, id := range ids {
		for _, u := range m.docs {
			if u.ID == id {
				out[id.Hex()] = model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Photo: u.Photo}
			}
		}
	}
	return out, nil
}

func (m *memUsers) update(id primitive.ObjectID, fn func(u *model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == id {
			fn(&m.docs[i])
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) add(u model.User) model.User {
	u.ID = primitive.NewObjectID()
	m.mu.Lock()
	m.docs = append(m.docs, u)
	m.mu.Unlock()
	return u
}

type fakeMailer struct {
	sent []queue.EmailMessage
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg queue.EmailMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeRatings struct {
	calls []primitive.ObjectID
}

func (f *fakeRatings) CalcAverageRatings(_ context.Context, id primitive.ObjectID) (model.RatingSummary, error) {
	f.calls = append(f.calls, id)
	return model.RatingSummary{}, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = apperr.Handler(false, zap.NewNop())
	return e
}

func doJSON(e *echo.Echo, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, fn := range mutate {
		fn(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder, key string) map[string]any {
	t.Helper()
	body := decode(t, rec)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	doc, ok := data[key].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return doc
}
