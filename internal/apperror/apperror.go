package apperror

import "net/http"

type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindAuthorization  Kind = "AuthorizationError"
	KindAuthentication Kind = "AuthenticationError"
	KindServer         Kind = "ServerError"
)

// Error is the boundary type every failure of the auth core is translated
// into before it reaches the transport layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Server(message string, err error) *Error {
	return &Error{Kind: KindServer, Message: message, Err: err}
}
