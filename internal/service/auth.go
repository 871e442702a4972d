package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// Client-facing messages of the credential flows.
const (
	MsgMissingCredentials = "Please provide email and password"
	MsgBadCredentials     = "Incorrect email or password"
	MsgNotLoggedIn        = "You are not logged in! Please log in to get access."
	MsgUserGone           = "The user belonging to this token no longer exists."
	MsgPasswordChanged    = "User recently changed password! Please log in again."
	MsgNoUserWithEmail    = "There is no user with that email address"
	MsgResetTokenInvalid  = "Token is invalid or has expired"
	MsgResetEmailFailed   = "There was an error sending the email. Try again later!"
	MsgWrongPassword      = "Your current password is wrong"
	MsgResetTokenSent     = "Token sent to email!"
)

// UserStore is the part of the user repository the auth flows need.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*model.User, error)
	Insert(ctx context.Context, u *model.User) error
	Replace(ctx context.Context, u *model.User) error
	Set(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Unset(ctx context.Context, id primitive.ObjectID, fields ...string) error
}

// SignupInput is the accepted signup body. Any role in the request is
// ignored; new accounts are always plain users.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Photo           string `json:"photo"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Session is a signed-in user together with the token that proves it.
type Session struct {
	User  *model.User
	Token string
}

// AuthService owns the credential and session token lifecycle.
type AuthService struct {
	users  UserStore
	tokens *utils.TokenManager
	mailer Mailer
	cost   int
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens *utils.TokenManager, mailer Mailer, bcryptCost int, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, cost: bcryptCost, log: log, now: time.Now}
}

// Tokens exposes the token manager for cookie lifetimes.
func (s *AuthService) Tokens() *utils.TokenManager { return s.tokens }

// Signup creates a user with the default role and signs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	u := &model.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  repository.NormalizeEmail(in.Email),
		Photo:  in.Photo,
		Role:   model.RoleUser,
		Active: true,
	}
	if err := s.setPassword(u, in.Password, true); err != nil {
		return Session{}, err
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// Login checks credentials. Unknown email and wrong password fail the same
// way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, apperr.BadRequest(MsgMissingCredentials)
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Unauthorized(MsgBadCredentials)
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.Password, password) {
		return Session{}, apperr.Unauthorized(MsgBadCredentials)
	}
	return s.session(u)
}

// Authenticate resolves the user behind a raw session token. It fails when
// the token is invalid or expired, the user no longer exists, or the
// password changed after the token was issued.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, apperr.Unauthorized(MsgNotLoggedIn)
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return nil, apperr.Unauthorized(MsgUserGone)
	}
	if err != nil {
		return nil, err
	}
	if IsTokenStale(claims.IssuedAtUnix(), u) {
		return nil, apperr.Unauthorized(MsgPasswordChanged)
	}
	return u, nil
}

// IsTokenStale reports whether a token issued at issuedAt predates the
// user's last password change.
func IsTokenStale(issuedAt int64, u *model.User) bool {
	return u.ChangedPasswordAfter(issuedAt)
}

// CreateResetToken stores the hash and expiry of a fresh reset token on u
// and returns the plaintext. The user is persisted without validation.
func (s *AuthService) CreateResetToken(ctx context.Context, u *model.User) (string, error) {
	tok, err := utils.NewResetToken(s.now().UTC())
	if err != nil {
		return "", err
	}
	u.PasswordResetToken = tok.Hash
	u.PasswordResetExpires = &tok.Expires
	if err := s.users.Set(ctx, u.ID, bson.M{
		"passwordResetToken":   tok.Hash,
		"passwordResetExpires": tok.Expires,
	}); err != nil {
		return "", err
	}
	return tok.Raw, nil
}

// ConsumeResetToken finds the user holding an unexpired reset token.
func (s *AuthService) ConsumeResetToken(ctx context.Context, raw string) (*model.User, error) {
	u, err := s.users.FindByResetToken(ctx, utils.HashToken(raw), s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.BadRequest(MsgResetTokenInvalid)
	}
	return u, err
}

// ForgotPassword emails a reset link built from resetURL (the token is
// appended). If delivery fails the stored token is cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(MsgNoUserWithEmail)
	}
	if err != nil {
		return err
	}

	raw, err := s.CreateResetToken(ctx, u)
	if err != nil {
		return err
	}

	link := strings.TrimSuffix(resetURL, "/") + "/" + raw
	msg := queue.EmailMessage{
		To:      u.Email,
		Subject: "Your password reset token (valid for 10 minutes!)",
		Text: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\n"+
			"If you didn't forget your password, please ignore this email!", link),
		RequestedAt: s.now().UTC(),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("send reset email", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		u.ClearResetToken()
		if uerr := s.users.Unset(ctx, u.ID, "passwordResetToken", "passwordResetExpires"); uerr != nil {
			s.log.Error("clear reset token", zap.Error(uerr), zap.String("user_id", u.ID.Hex()))
		}
		return apperr.Wrap(err, http.StatusInternalServerError, MsgResetEmailFailed)
	}
	return nil
}

// ResetPassword sets a new password for the holder of raw and signs them
// in. The reset token is cleared.
func (s *AuthService) ResetPassword(ctx context.Context, raw, password string) (Session, error) {
	u, err := s.ConsumeResetToken(ctx, raw)
	if err != nil {
		return Session{}, err
	}
	if err := s.setPassword(u, password, false); err != nil {
		return Session{}, err
	}
	u.ClearResetToken()
	if err := s.users.Replace(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// UpdatePassword changes the password of a signed-in user after checking
// the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, password string) (Session, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(u.Password, current) {
		return Session{}, apperr.Unauthorized(MsgWrongPassword)
	}
	if err := s.setPassword(u, password, false); err != nil {
		return Session{}, err
	}
	if err := s.users.Replace(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// HashPassword hashes a plaintext password with the configured cost.
func (s *AuthService) HashPassword(plain string) (string, error) {
	return utils.HashPassword(plain, s.cost)
}

// setPassword hashes plain onto u. For existing users passwordChangedAt is
// set one second in the past so the token issued right after still
// verifies.
func (s *AuthService) setPassword(u *model.User, plain string, isNew bool) error {
	hash, err := s.HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hash
	if !isNew {
		changed := s.now().UTC().Add(-time.Second)
		u.PasswordChangedAt = &changed
	}
	return nil
}

func (s *AuthService) session(u *model.User) (Session, error) {
	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}
