package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/swordgame-go/internal/api/response"
	"github.com/mcoot/swordgame-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidLevel       = "INVALID_LEVEL"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Error is an error that already knows its HTTP rendering
type Error struct {
	Status int
	Body   APIError
}

func (e *Error) Error() string {
	return e.Body.Message
}

var internal = &Error{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}

// domain maps sentinel errors to responses; first match wins
var domain = []struct {
	target error
	render *Error
}{
	{model.ErrUnknownConnection, &Error{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}},
	{model.ErrPlayerNotFound, &Error{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}},
	{model.ErrInvalidLevel, &Error{http.StatusBadRequest, APIError{CodeInvalidLevel, "Level must be a non-negative integer"}}},
	{model.ErrDispatcherStopped, &Error{http.StatusServiceUnavailable, APIError{CodeServiceUnavailable, "Server is shutting down"}}},
}

// From resolves err to its HTTP rendering. Unrecognised errors become a
// generic 500 so internal detail never reaches the client.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, d := range domain {
		if errors.Is(err, d.target) {
			return d.render
		}
	}
	return internal
}

// WriteError renders err as a JSON error body
func WriteError(w http.ResponseWriter, err error) {
	e := From(err)
	response.JSON(w, e.Status, ErrorResponse{Error: e.Body})
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &Error{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &Error{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return internal
}
