package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetReq struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type updatePasswordReq struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Signup: create a user with the default role and sign them in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req service.SignupInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Auth.Signup(ctx, req)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusCreated, sess)
}

// Login: verify credentials and issue a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, sess)
}

// Logout overwrites the session cookie with a short-lived placeholder.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// ForgotPassword emails a reset link to the account's address.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" {
		return apperr.BadRequest("Please provide your email address")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	resetURL := c.Scheme() + "://" + c.Request().Host + "/api/v1/users/resetPassword"
	if err := h.Auth.ForgotPassword(ctx, req.Email, resetURL); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": service.MsgResetTokenSent})
}

// ResetPassword sets a new password using the emailed token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Auth.ResetPassword(ctx, c.Param("token"), req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, sess)
}

// UpdateMyPassword changes the signed-in user's password.
func (h *AuthHandler) UpdateMyPassword(c echo.Context) error {
	var req updatePasswordReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	me := middleware.CurrentUser(c)
	if me == nil {
		return apperr.Unauthorized(service.MsgNotLoggedIn)
	}
	sess, err := h.Auth.UpdatePassword(ctx, me.ID.Hex(), req.PasswordCurrent, req.Password)
	if err != nil {
		return err
	}
	return h.sendSession(c, http.StatusOK, sess)
}

// sendSession sets the jwt cookie and writes {status, token, data:{user}}.
// The cookie is marked Secure only when the request came over TLS.
func (h *AuthHandler) sendSession(c echo.Context, code int, sess service.Session) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(h.Cfg.CookieExpiresDays) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
	})
	return c.JSON(code, echo.Map{
		"status": "success",
		"token":  sess.Token,
		"data":   echo.Map{"user": sess.User},
	})
}
