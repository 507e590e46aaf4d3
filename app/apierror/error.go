// Package apierror defines the closed set of failures the service reports to
// callers. Every domain error carries a Kind that the HTTP and gRPC boundaries
// translate into a status; anything that is not an *Error is treated as Internal.
package apierror

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code written for errors of this kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode returns the gRPC status code for errors of this kind.
func (k Kind) GRPCCode() codes.Code {
	switch k {
	case KindBadRequest:
		return codes.InvalidArgument
	case KindUnauthorized:
		return codes.Unauthenticated
	case KindNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func BadRequest(message string, details map[string]string) *Error {
	return &Error{Kind: KindBadRequest, Message: message, Details: details}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "unauthorized"
	}
	return New(KindUnauthorized, message)
}

func NotFound(message string) *Error {
	if message == "" {
		message = "not found"
	}
	return New(KindNotFound, message)
}

var internal = New(KindInternal, "internal server error")

// From extracts the typed error from err. Wrapped context added with %w is kept
// in the returned message so callers see e.g. "user already exists: a@x.com".
// Errors outside the taxonomy come back as a generic Internal error.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return internal
	}
	if apiErr.Kind == KindInternal {
		return internal
	}

	return &Error{
		Kind:    apiErr.Kind,
		Message: err.Error(),
		Details: apiErr.Details,
	}
}

// KindOf reports the kind of err, KindInternal for unknown errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}
