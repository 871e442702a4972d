package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/service"
)

// MsgNotForPasswords rejects password fields on /updateMe.
const MsgNotForPasswords = "This route is not for password updates. Please use /updateMyPassword"

// UserStore is the persistence surface of the user endpoints.
type UserStore interface {
	Store[model.User]
	Set(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// PasswordHasher hashes a plaintext password with the configured cost.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
}

// UserHandler serves /api/v1/users. Admin CRUD comes from the embedded
// factory; the self-service routes act on the signed-in user.
type UserHandler struct {
	*Factory[model.User]
	Users  UserStore
	Hasher PasswordHasher
}

func NewUserHandler(users UserStore, hasher PasswordHasher) *UserHandler {
	return &UserHandler{
		Factory: NewFactory[model.User](users, "data").Plural("users").Before(normalizeEmail),
		Users:   users,
		Hasher:  hasher,
	}
}

type updateMeReq struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

type createUserReq struct {
	Name            string     `json:"name" validate:"required"`
	Email           string     `json:"email" validate:"required,email"`
	Photo           string     `json:"photo"`
	Role            model.Role `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Password        string     `json:"password" validate:"required,min=8"`
	PasswordConfirm string     `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func normalizeEmail(_ echo.Context, u *model.User) error {
	u.Email = repository.NormalizeEmail(u.Email)
	return nil
}

// GetMe returns the signed-in user.
func (h *UserHandler) GetMe(c echo.Context) error {
	me := middleware.CurrentUser(c)
	if me == nil {
		return apperr.Unauthorized(service.MsgNotLoggedIn)
	}
	c.SetParamNames("id")
	c.SetParamValues(me.ID.Hex())
	return h.GetOne(c)
}

// UpdateMe changes the signed-in user's name, email or photo. Any other
// field in the body is ignored; password fields are rejected.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req updateMeReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		return apperr.BadRequest(MsgNotForPasswords)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	me := middleware.CurrentUser(c)
	if me == nil {
		return apperr.Unauthorized(service.MsgNotLoggedIn)
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = repository.NormalizeEmail(*req.Email)
	}
	if req.Photo != nil {
		fields["photo"] = *req.Photo
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if len(fields) > 0 {
		if err := h.Users.Set(ctx, me.ID, fields); err != nil {
			return err
		}
	}
	updated, err := h.Users.FindByID(ctx, me.ID.Hex())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", updated)
}

// DeleteMe deactivates the signed-in user.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	me := middleware.CurrentUser(c)
	if me == nil {
		return apperr.Unauthorized(service.MsgNotLoggedIn)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Users.Deactivate(ctx, me.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser lets an admin create an account with any role.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	hash, err := h.Hasher.HashPassword(req.Password)
	if err != nil {
		return err
	}
	u := &model.User{
		Name:     req.Name,
		Email:    repository.NormalizeEmail(req.Email),
		Photo:    req.Photo,
		Role:     req.Role,
		Password: hash,
		Active:   true,
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.Insert(ctx, u); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "data", u)
}
