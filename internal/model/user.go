package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the enumerated authorization level of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User represents an account as stored in the `users` collection.
//
// Fields:
//
//	Password             – bcrypt hash, never serialized to JSON.
//	PasswordChangedAt    – set one second in the past on every password change
//	                       so that a token issued in the same second stays valid.
//	PasswordResetToken   – sha256 hex of the plaintext reset token.
//	PasswordResetExpires – reset token expiry.
//	Active               – false after /deleteMe; inactive users are invisible.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name" validate:"required"`
	Email                string             `bson:"email" json:"email" validate:"required,email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 Role               `bson:"role" json:"role" validate:"required,oneof=user guide lead-guide admin"`
	Password             string             `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
	Version              int                `bson:"__v" json:"-"`
}

func (u *User) GetID() primitive.ObjectID { return u.ID }
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// ChangedPasswordAfter reports whether the password was changed after a
// token issued at issuedAt (unix seconds). Tokens for which this is true
// must be rejected.
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt < u.PasswordChangedAt.Unix()
}

// ClearResetToken drops the reset token fields after use or failed delivery.
func (u *User) ClearResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// UserRef is the subset of a user embedded into populated documents.
// Review authors carry name and photo; tour guides also carry email and role.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
}
