package httpErrors

import (
	"errors"
	"net/http"

	dErrors "meridian/pkg/domain-errors"
)

// Code enumerates typed error categories so the HTTP layer can map them cleanly.
type Code string

const (
	CodeInvalidInput   Code = "invalid_input"
	CodeInvalidRequest Code = "invalid_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeInternal       Code = "internal_error"
	CodeUnavailable    Code = "unavailable"
)

// GatewayError wraps domain or infrastructure failures with a stable code.
type GatewayError struct {
	Code    Code
	Message string
	Err     error
}

func (e GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e GatewayError) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) GatewayError {
	return GatewayError{Code: code, Message: msg}
}

func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromDomain converts a domain error into a GatewayError so handlers can
// translate exactly once at the transport boundary.
func FromDomain(err error) GatewayError {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return GatewayError{Code: CodeInternal, Message: "internal error", Err: err}
	}
	return GatewayError{Code: codeFromDomain(de.Code), Message: de.Message, Err: err}
}

func codeFromDomain(code dErrors.Code) Code {
	switch code {
	case dErrors.CodeNotFound:
		return CodeNotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return CodeInvalidInput
	case dErrors.CodeUnauthorized:
		return CodeUnauthorized
	case dErrors.CodeForbidden:
		return CodeForbidden
	case dErrors.CodeConflict:
		return CodeConflict
	case dErrors.CodeUnavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
