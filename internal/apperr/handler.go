package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// Messages shared with middleware and handlers.
const (
	MsgInvalidToken   = "Invalid token. Please log in again"
	MsgExpiredToken   = "Your token has expired, please log in again!"
	MsgNotFoundByID   = "No document found with that ID"
	MsgSomethingWrong = "Something went wrong!"
)

// Translate converts err into an *Error. Known store, validation and token
// errors become operational errors; anything unrecognised becomes a
// non-operational 500.
func Translate(err error) *Error {
	var (
		appErr   *Error
		httpErr  *echo.HTTPError
		invalid  *repository.InvalidIDError
		dup      *repository.DuplicateError
		validErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &invalid):
		return Wrap(err, http.StatusBadRequest, fmt.Sprintf("Invalid _id: %s", invalid.Value))
	case errors.As(err, &dup):
		return Wrap(err, http.StatusBadRequest, fmt.Sprintf("Duplicate field value: %s. Please use another value.", dup.Value))
	case errors.As(err, &validErr):
		msg := "Invalid input data. " + strings.Join(utils.ValidationMessages(validErr), ". ")
		return Wrap(err, http.StatusBadRequest, msg)
	case errors.Is(err, utils.ErrTokenExpired):
		return Wrap(err, http.StatusUnauthorized, MsgExpiredToken)
	case errors.Is(err, utils.ErrTokenInvalid):
		return Wrap(err, http.StatusUnauthorized, MsgInvalidToken)
	case errors.Is(err, repository.ErrNotFound):
		return Wrap(err, http.StatusNotFound, MsgNotFoundByID)
	case errors.As(err, &httpErr):
		return Wrap(err, httpErr.Code, httpMessage(httpErr))
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Status:     statusFor(http.StatusInternalServerError),
		Message:    err.Error(),
		Cause:      err,
		Stack:      string(debug.Stack()),
	}
}

func httpMessage(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	return http.StatusText(he.Code)
}

type prodBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type devBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
	Error   any    `json:"error"`
}

// Handler returns the echo error handler. In development every error is
// reported in full; otherwise operational errors show their message and
// all others a generic one.
func Handler(development bool, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if errors.Is(err, echo.ErrNotFound) {
			err = NotFound(fmt.Sprintf("Can't find %s on this server!", c.Request().URL.RequestURI()))
		}
		e := Translate(err)
		if !e.Operational {
			log.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		var body any
		switch {
		case development:
			body = devBody{Status: e.Status, Message: e.Message, Stack: e.Stack, Error: describe(e)}
		case e.Operational:
			body = prodBody{Status: e.Status, Message: e.Message}
		default:
			body = prodBody{Status: "error", Message: MsgSomethingWrong}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(e.StatusCode)
		} else {
			err = c.JSON(e.StatusCode, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

// describe is the development view of the error value.
func describe(e *Error) map[string]any {
	out := map[string]any{
		"statusCode":  e.StatusCode,
		"status":      e.Status,
		"operational": e.Operational,
	}
	if e.Cause != nil {
		out["cause"] = e.Cause.Error()
	}
	return out
}
