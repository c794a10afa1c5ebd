package services

import "errors"

// Error kinds. Routes map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
)

var (
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrTeamNotFound       = NewError(ErrNotFound, "Team not found")
	ErrTaskNotFound       = NewError(ErrNotFound, "Task not found")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid credentials. Please check your email and password.")
	ErrInvalidToken       = NewError(ErrUnauthorized, "Invalid or expired token")
	ErrNotTeamMember      = NewError(ErrForbidden, "You are not a member of this team")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}
