package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

type geoCall struct {
	lng, lat, arg float64
}

type memTours struct {
	memStore[model.Tour]
	within    geoCall
	distances geoCall
	year      int
}

func (m *memTours) FindBySlug(_ context.Context, slug string) (*model.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.docs {
		if t.Slug == slug && !t.SecretTour {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTours) Within(_ context.Context, lng, lat, radius float64) ([]model.Tour, error) {
	m.within = geoCall{lng, lat, radius}
	return append([]model.Tour(nil), m.docs...), nil
}

func (m *memTours) Distances(_ context.Context, lng, lat, multiplier float64) ([]model.TourDistance, error) {
	m.distances = geoCall{lng, lat, multiplier}
	out := make([]model.TourDistance, 0, len(m.docs))
	for _, t := range m.docs {
		out = append(out, model.TourDistance{ID: t.ID, Name: t.Name, Distance: 12.5})
	}
	return out, nil
}

func (m *memTours) Stats(context.Context) ([]model.TourStats, error) {
	return []model.TourStats{{Difficulty: "EASY", NumTours: 1, AvgPrice: 397}}, nil
}

func (m *memTours) MonthlyPlan(_ context.Context, year int) ([]model.MonthlyPlan, error) {
	m.year = year
	return []model.MonthlyPlan{{Month: 7, NumTourStarts: 2, Tours: []string{"A", "B"}}}, nil
}

type memReviews struct {
	memStore[model.Review]
}

func (m *memReviews) FindByTour(_ context.Context, tourID primitive.ObjectID) ([]model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Review
	for _, r := range m.docs {
		if r.Tour == tourID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTourEcho(tours *memTours, reviews *memReviews, users *memUsers) *echo.Echo {
	h := NewTourHandler(tours, reviews, users)
	e := newTestEcho()
	g := e.Group("/api/v1/tours")
	g.GET("/top-5-cheap", h.GetAll, AliasTopTours)
	g.GET("/tour-stats", h.Stats)
	g.GET("/monthly-plan/:year", h.MonthlyPlan)
	g.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.Within)
	g.GET("/distances/:latlng/unit/:unit", h.Distances)
	g.GET("", h.GetAll)
	g.POST("", h.CreateOne)
	g.GET("/:id", h.GetTour)
	return e
}

func seedTour(t *testing.T, tours *memTours, tour model.Tour) model.Tour {
	t.Helper()
	tour.Normalize()
	require.NoError(t, tours.Insert(context.Background(), &tour))
	return tour
}

func TestTour_GetAllEnvelope(t *testing.T) {
	tours := &memTours{}
	seedTour(t, tours, model.Tour{Name: "The Forest Hiker", Duration: 14, Price: 397})
	e := newTourEcho(tours, &memReviews{}, &memUsers{})

	rec := doJSON(e, http.MethodGet, "/api/v1/tours", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["requestedAt"])
	assert.Equal(t, 1.0, body["results"])
	row := body["data"].(map[string]any)["tours"].([]any)[0].(map[string]any)
	assert.Equal(t, 2.0, row["durationWeeks"])
}

func TestTour_AliasTopTours(t *testing.T) {
	tours := &memTours{}
	e := newTourEcho(tours, &memReviews{}, &memUsers{})

	rec := doJSON(e, http.MethodGet, "/api/v1/tours/top-5-cheap?limit=50", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, tours.last.Limit())
	assert.Equal(t, []string{"name", "price", "ratingAverage", "summary", "difficulty"}, tours.last.Fields())
	require.Len(t, tours.last.SortSpec(), 2)
	assert.Equal(t, "ratingAverage", tours.last.SortSpec()[0].Key)
	assert.Equal(t, -1, tours.last.SortSpec()[0].Value)
}

func TestTour_GetTourPopulated(t *testing.T) {
	users := &memUsers{}
	guide := users.add(model.User{Name: "Steve Miller", Email: "steve@example.com", Role: model.RoleLeadGuide, Photo: "s.jpg"})
	author := users.add(model.User{Name: "Lourdes Browning", Email: "lourdes@example.com", Role: model.RoleUser, Photo: "l.jpg"})
	tours := &memTours{}
	tour := seedTour(t, tours, model.Tour{Name: "The Forest Hiker", Duration: 5, Guides: []primitive.ObjectID{guide.ID, primitive.NewObjectID()}})
	reviews := &memReviews{}
	require.NoError(t, reviews.Insert(context.Background(), &model.Review{Review: "Great", Rating: 5, Tour: tour.ID, User: author.ID}))
	require.NoError(t, reviews.Insert(context.Background(), &model.Review{Review: "Other", Rating: 3, Tour: primitive.NewObjectID(), User: author.ID}))
	e := newTourEcho(tours, reviews, users)

	rec := doJSON(e, http.MethodGet, "/api/v1/tours/"+tour.ID.Hex(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := dataOf(t, rec, "tour")
	guides := doc["guides"].([]any)
	require.Len(t, guides, 1)
	assert.Equal(t, "steve@example.com", guides[0].(map[string]any)["email"])
	assert.Equal(t, "lead-guide", guides[0].(map[string]any)["role"])

	list := doc["reviews"].([]any)
	require.Len(t, list, 1)
	user := list[0].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Lourdes Browning", user["name"])
	assert.Equal(t, "l.jpg", user["photo"])
	assert.NotContains(t, user, "email")
}

func TestTour_StatsAndMonthlyPlan(t *testing.T) {
	tours := &memTours{}
	e := newTourEcho(tours, &memReviews{}, &memUsers{})

	rec := doJSON(e, http.MethodGet, "/api/v1/tours/tour-stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["data"].(map[string]any)["stats"].([]any)
	assert.Equal(t, "EASY", stats[0].(map[string]any)["difficulty"])

	rec = doJSON(e, http.MethodGet, "/api/v1/tours/monthly-plan/2021", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2021, tours.year)
	plan := decode(t, rec)["data"].(map[string]any)["plan"].([]any)
	assert.Equal(t, 7.0, plan[0].(map[string]any)["month"])

	rec = doJSON(e, http.MethodGet, "/api/v1/tours/monthly-plan/next", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTour_Within(t *testing.T) {
	tours := &memTours{}
	seedTour(t, tours, model.Tour{Name: "The Sea Explorer", Duration: 7})
	e := newTourEcho(tours, &memReviews{}, &memUsers{})

	rec := doJSON(e, http.MethodGet, "/api/v1/tours/tours-within/400/center/34.111745,-118.113491/unit/mi", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, decode(t, rec)["results"])
	assert.InDelta(t, -118.113491, tours.within.lng, 1e-9)
	assert.InDelta(t, 34.111745, tours.within.lat, 1e-9)
	assert.InDelta(t, 400/3963.2, tours.within.arg, 1e-12)
}

func TestTour_Distances(t *testing.T) {
	tours := &memTours{}
	seedTour(t, tours, model.Tour{Name: "The Sea Explorer", Duration: 7})
	e := newTourEcho(tours, &memReviews{}, &memUsers{})

	rec := doJSON(e, http.MethodGet, "/api/v1/tours/distances/34.1,-118.1/unit/km", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.001, tours.distances.arg, 1e-12)
	rows := decode(t, rec)["data"].(map[string]any)["data"].([]any)
	assert.Equal(t, "The Sea Explorer", rows[0].(map[string]any)["name"])
}

func TestTour_BadLatLng(t *testing.T) {
	e := newTourEcho(&memTours{}, &memReviews{}, &memUsers{})

	for _, target := range []string{
		"/api/v1/tours/distances/34.1/unit/km",
		"/api/v1/tours/tours-within/200/center/abc,def/unit/km",
	} {
		rec := doJSON(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, MsgBadLatLng, decode(t, rec)["message"], target)
	}
}
