package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/schema"
)

var (
	// ErrNotFound is matched by *NotFoundError.
	ErrNotFound = errors.New("procedure not found")

	// ErrDuplicateProcedure is returned when two procedures share a name.
	ErrDuplicateProcedure = errors.New("duplicate procedure")

	// ErrInvalidProcedure is returned for a procedure without a name, kind,
	// schema or handler.
	ErrInvalidProcedure = errors.New("invalid procedure")

	// ErrMethodNotSupported is returned when a transport calls a procedure
	// with the wrong verb, for example a mutation over GET.
	ErrMethodNotSupported = errors.New("method not supported for procedure")

	// ErrParse is returned by transports when the input is not valid JSON.
	ErrParse = errors.New("unable to parse input")
)

// NotFoundError reports a call to an unregistered procedure.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.Name)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UpstreamError is implemented by errors that report a failure of an
// external system a handler depends on, such as an event API.
type UpstreamError interface {
	error
	Upstream() bool
}

func isUpstream(err error) bool {
	var u UpstreamError
	return errors.As(err, &u) && u.Upstream()
}

// Code classifies errors for transports.
type Code string

const (
	CodeOK                  Code = "OK"
	CodeParseError          Code = "PARSE_ERROR"
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeNotFound            Code = "NOT_FOUND"
	CodeMethodNotSupported  Code = "METHOD_NOT_SUPPORTED"
	CodeBadGateway          Code = "BAD_GATEWAY"
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
)

// CodeOf maps err to its Code. Validation, parse, lookup and method errors are
// client errors; upstream failures and anything else raised by a handler are
// server errors.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrParse):
		return CodeParseError
	case errors.Is(err, schema.ErrValidation):
		return CodeBadRequest
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrMethodNotSupported):
		return CodeMethodNotSupported
	case isUpstream(err):
		return CodeBadGateway
	default:
		return CodeInternalServerError
	}
}

// HTTPStatus returns the status code transports use for c.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case CodeParseError, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotSupported:
		return http.StatusMethodNotAllowed
	case CodeBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether c is the caller's fault.
func (c Code) IsClientError() bool {
	status := c.HTTPStatus()
	return status >= 400 && status < 500
}
