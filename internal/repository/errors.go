// Package repository defines the MongoDB-backed stores and the error values
// they share. Driver errors never leave this package untranslated: a missing
// document becomes ErrNotFound, a unique index violation becomes a
// *DuplicateError and a malformed identifier becomes an *InvalidIDError, so
// the HTTP layer can map each one to a client-facing message.
package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no document matches an identifier.
// Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("no document found")

// ErrDuplicate is matched by every *DuplicateError.
var ErrDuplicate = errors.New("duplicate key")

// ErrInvalidID is matched by every *InvalidIDError.
var ErrInvalidID = errors.New("invalid id")

// DuplicateError reports a unique index violation. Value is the offending
// key value as reported by the server.
type DuplicateError struct {
	Value string
	cause error
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("duplicate key value %s", e.Value) }
func (e *DuplicateError) Unwrap() []error { return []error{ErrDuplicate, e.cause} }

// InvalidIDError reports an identifier that is not a valid ObjectID.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string { return fmt.Sprintf("invalid id %q", e.Value) }
func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// first quoted value inside "dup key: { name: \"...\" }"
var dupValue = regexp.MustCompile(`"((?:\\.|[^"\\])*)"`)

// translate maps driver errors onto the package's error values.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return &DuplicateError{Value: duplicateValue(err.Error()), cause: err}
	}
	return err
}

func duplicateValue(msg string) string {
	if i := strings.Index(msg, "dup key:"); i >= 0 {
		msg = msg[i:]
	}
	if m := dupValue.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	if i := strings.Index(msg, "{"); i >= 0 {
		return strings.Trim(msg[i:], "{} ")
	}
	return msg
}
