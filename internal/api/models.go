package api

// ResultResponse is the envelope for a successful call.
type ResultResponse struct {
	Result ResultBody `json:"result"`
}

// ResultBody wraps the procedure output.
type ResultBody struct {
	Data any `json:"data"`
}

// ErrorResponse is the envelope for a failed call.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	HTTPStatus int             `json:"http_status"`
	Path       string          `json:"path,omitempty"`
	TraceID    string          `json:"trace_id,omitempty"`
	Issues     []IssueResponse `json:"issues,omitempty"`
}

// IssueResponse is a single validation problem.
type IssueResponse struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ProcedureResponse describes a registered procedure.
type ProcedureResponse struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Schema string `json:"schema"`
}

// ProceduresResponse is returned by the introspection endpoint.
type ProceduresResponse struct {
	Procedures []ProcedureResponse `json:"procedures"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
