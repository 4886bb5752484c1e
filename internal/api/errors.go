package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/scaffold-api/internal/events"
	"github.com/phrazzld/scaffold-api/internal/rpc"
	"github.com/phrazzld/scaffold-api/internal/schema"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. The mapping
// follows rpc.CodeOf so in-process callers and HTTP clients agree on error
// classes.
func MapErrorToStatusCode(err error) int {
	return rpc.CodeOf(err).HTTPStatus()
}

// GetSafeErrorMessage returns a user-facing message for err. Client errors
// describe what was wrong with the request; server errors never expose the
// underlying error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, rpc.ErrParse):
		return "Input is not valid JSON"
	case errors.Is(err, schema.ErrValidation):
		return "Input validation failed"
	case errors.Is(err, rpc.ErrNotFound):
		var nf *rpc.NotFoundError
		if errors.As(err, &nf) {
			return "No procedure named " + nf.Name
		}
		return "Procedure not found"
	case errors.Is(err, rpc.ErrMethodNotSupported):
		return "Method not supported for this procedure"
	case errors.Is(err, events.ErrDispatch):
		return "Failed to dispatch event"
	default:
		return "An unexpected error occurred"
	}
}

// newErrorBody builds the error envelope for a failed call on path.
func newErrorBody(err error, path, traceID string) ErrorBody {
	code := rpc.CodeOf(err)
	body := ErrorBody{
		Message:    GetSafeErrorMessage(err),
		Code:       string(code),
		HTTPStatus: code.HTTPStatus(),
		Path:       path,
		TraceID:    traceID,
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		body.Issues = make([]IssueResponse, 0, len(ve.Issues))
		for _, issue := range ve.Issues {
			body.Issues = append(body.Issues, IssueResponse{Path: issue.Path, Message: issue.Message})
		}
	}
	return body
}

// statusForBatch returns 200 when every call succeeded, the shared status when
// every call failed with the same one, and 207 otherwise.
func statusForBatch(statuses []int) int {
	if len(statuses) == 0 {
		return http.StatusOK
	}
	first := statuses[0]
	for _, s := range statuses[1:] {
		if s != first {
			return http.StatusMultiStatus
		}
	}
	return first
}
