package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
	"github.com/iliyamo/tour-booking/internal/utils"
)

type reviewFixture struct {
	e       *echo.Echo
	reviews *memReviews
	ratings *fakeRatings
	token   string
	user    model.User
}

func newReviewFixture(t *testing.T) reviewFixture {
	t.Helper()
	users := &memUsers{}
	user := users.add(model.User{Name: "Lourdes Browning", Email: "lourdes@example.com", Role: model.RoleUser, Photo: "l.jpg"})
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)
	auth := service.NewAuthService(users, tokens, &fakeMailer{}, 4, zap.NewNop())

	reviews := &memReviews{}
	ratings := &fakeRatings{}
	h := NewReviewHandler(reviews, users, ratings)

	e := newTestEcho()
	mount := func(g *echo.Group) {
		g.Use(middleware.Protect(auth))
		g.GET("", h.GetAll)
		g.POST("", h.CreateOne, middleware.RestrictTo(model.RoleUser))
		g.GET("/:id", h.GetOne)
		g.PATCH("/:id", h.UpdateOne, middleware.RestrictTo(model.RoleUser, model.RoleAdmin))
		g.DELETE("/:id", h.DeleteOne, middleware.RestrictTo(model.RoleUser, model.RoleAdmin))
	}
	mount(e.Group("/api/v1/reviews"))
	mount(e.Group("/api/v1/tours/:tourId/reviews"))
	return reviewFixture{e: e, reviews: reviews, ratings: ratings, token: token, user: user}
}

func TestReview_CreateNestedFillsIDs(t *testing.T) {
	fx := newReviewFixture(t)
	tourID := primitive.NewObjectID()

	rec := doJSON(fx.e, http.MethodPost, "/api/v1/tours/"+tourID.Hex()+"/reviews",
		`{"review":"Amazing tour","rating":5}`, bearer(fx.token))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	doc := dataOf(t, rec, "data")
	assert.Equal(t, tourID.Hex(), doc["tour"])
	assert.Equal(t, fx.user.ID.Hex(), doc["user"])
	assert.Equal(t, []primitive.ObjectID{tourID}, fx.ratings.calls)
}

func TestReview_CreateValidation(t *testing.T) {
	fx := newReviewFixture(t)
	tourID := primitive.NewObjectID()

	rec := doJSON(fx.e, http.MethodPost, "/api/v1/tours/"+tourID.Hex()+"/reviews",
		`{"review":"Too good","rating":6}`, bearer(fx.token))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, fx.reviews.count())
	assert.Empty(t, fx.ratings.calls)
}

func TestReview_RequiresLogin(t *testing.T) {
	fx := newReviewFixture(t)

	rec := doJSON(fx.e, http.MethodGet, "/api/v1/reviews", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReview_ListNestedPopulated(t *testing.T) {
	fx := newReviewFixture(t)
	tourID := primitive.NewObjectID()
	doJSON(fx.e, http.MethodPost, "/api/v1/tours/"+tourID.Hex()+"/reviews",
		`{"review":"Amazing tour","rating":5}`, bearer(fx.token))

	rec := doJSON(fx.e, http.MethodGet, "/api/v1/tours/"+tourID.Hex()+"/reviews", "", bearer(fx.token))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, tourID, fx.reviews.last.Criteria()["tour"])
	list := decode(t, rec)["data"].(map[string]any)["reviews"].([]any)
	require.Len(t, list, 1)
	author := list[0].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "Lourdes Browning", author["name"])
}

func TestReview_UpdateAndDeleteRecalculate(t *testing.T) {
	fx := newReviewFixture(t)
	tourID := primitive.NewObjectID()
	created := dataOf(t, doJSON(fx.e, http.MethodPost, "/api/v1/tours/"+tourID.Hex()+"/reviews",
		`{"review":"Amazing tour","rating":5}`, bearer(fx.token)), "data")
	id := created["id"].(string)

	rec := doJSON(fx.e, http.MethodPatch, "/api/v1/reviews/"+id, `{"rating":3}`, bearer(fx.token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3.0, dataOf(t, rec, "data")["rating"])

	rec = doJSON(fx.e, http.MethodDelete, "/api/v1/reviews/"+id, "", bearer(fx.token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []primitive.ObjectID{tourID, tourID, tourID}, fx.ratings.calls)
}

func TestReview_MoveToAnotherTourRecalculatesBoth(t *testing.T) {
	fx := newReviewFixture(t)
	from, to := primitive.NewObjectID(), primitive.NewObjectID()
	created := dataOf(t, doJSON(fx.e, http.MethodPost, "/api/v1/tours/"+from.Hex()+"/reviews",
		`{"review":"Amazing tour","rating":5}`, bearer(fx.token)), "data")
	fx.ratings.calls = nil

	rec := doJSON(fx.e, http.MethodPatch, "/api/v1/reviews/"+created["id"].(string),
		`{"tour":"`+to.Hex()+`"}`, bearer(fx.token))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, to.Hex(), dataOf(t, rec, "data")["tour"])
	assert.Equal(t, []primitive.ObjectID{to, from}, fx.ratings.calls)
}

func TestReview_UpdateMissingReview(t *testing.T) {
	fx := newReviewFixture(t)

	rec := doJSON(fx.e, http.MethodPatch, "/api/v1/reviews/"+primitive.NewObjectID().Hex(), `{"rating":3}`, bearer(fx.token))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, fx.ratings.calls)
}
