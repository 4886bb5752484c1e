package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/scaffold-api/internal/api/shared"
	"github.com/phrazzld/scaffold-api/internal/rpc"
)

const (
	// InputParam is the query parameter carrying query input.
	InputParam = "input"

	// BatchParam switches a request into batch mode when set to "1" or "true".
	BatchParam = "batch"

	procedureParam = "procedure"
)

// RPCHandler serves the procedure router over HTTP.
type RPCHandler struct {
	router *rpc.Router
	logger *slog.Logger
}

// NewRPCHandler creates a handler for router.
func NewRPCHandler(router *rpc.Router, logger *slog.Logger) *RPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCHandler{
		router: router,
		logger: logger.With(slog.String("component", "rpc_handler")),
	}
}

// Routes mounts the RPC endpoints on r.
func (h *RPCHandler) Routes(r chi.Router) {
	r.Get("/", h.ListProcedures)
	r.Get("/{"+procedureParam+"}", h.HandleQuery)
	r.Post("/{"+procedureParam+"}", h.HandleMutation)
}

// ListProcedures returns the registered procedures.
func (h *RPCHandler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	infos := h.router.Procedures()
	resp := ProceduresResponse{Procedures: make([]ProcedureResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Procedures = append(resp.Procedures, ProcedureResponse{
			Name:   info.Name,
			Kind:   string(info.Kind),
			Schema: info.Schema,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// HandleQuery serves GET calls. Input comes from the "input" query parameter.
func (h *RPCHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, rpc.KindQuery, []byte(r.URL.Query().Get(InputParam)))
}

// HandleMutation serves POST calls. Input is the request body.
func (h *RPCHandler) HandleMutation(w http.ResponseWriter, r *http.Request) {
	body, err := shared.ReadBody(w, r)
	if err != nil {
		h.respondWithError(w, r, chi.URLParam(r, procedureParam), fmt.Errorf("%w: %v", rpc.ErrParse, err))
		return
	}
	h.serve(w, r, rpc.KindMutation, body)
}

func (h *RPCHandler) serve(w http.ResponseWriter, r *http.Request, kind rpc.Kind, rawInput []byte) {
	path := chi.URLParam(r, procedureParam)

	input, err := shared.DecodeInput(rawInput)
	if err != nil {
		h.respondWithError(w, r, path, fmt.Errorf("%w: %v", rpc.ErrParse, err))
		return
	}

	if !isBatch(r) {
		out, err := h.call(r, kind, path, input)
		if err != nil {
			h.respondWithError(w, r, path, err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{Result: ResultBody{Data: out}})
		return
	}

	inputs, err := batchInputs(input)
	if err != nil {
		h.respondWithError(w, r, path, err)
		return
	}

	names := strings.Split(path, ",")
	responses := make([]any, len(names))
	statuses := make([]int, len(names))
	traceID := shared.GetTraceID(r.Context())

	// Calls run in path order; a failed call does not stop the rest.
	for i, name := range names {
		out, err := h.call(r, kind, name, inputs[strconv.Itoa(i)])
		if err != nil {
			body := newErrorBody(err, name, traceID)
			shared.LogError(r, body.HTTPStatus, body.Message, err)
			responses[i] = ErrorResponse{Error: body}
			statuses[i] = body.HTTPStatus
			continue
		}
		responses[i] = ResultResponse{Result: ResultBody{Data: out}}
		statuses[i] = http.StatusOK
	}

	status := statusForBatch(statuses)
	h.logger.DebugContext(r.Context(), "batch completed",
		slog.Int("calls", len(names)),
		slog.Int("status", status),
		slog.String("trace_id", traceID))
	shared.RespondWithJSON(w, r, status, responses)
}

// call resolves name, checks that it may be called with the request's verb and
// runs it through the router.
func (h *RPCHandler) call(r *http.Request, kind rpc.Kind, name string, input any) (any, error) {
	p, err := h.router.Resolve(name)
	if err != nil {
		return nil, err
	}
	if p.Kind() != kind {
		return nil, fmt.Errorf("%w: %q is a %s, use %s", rpc.ErrMethodNotSupported, name, p.Kind(), methodFor(p.Kind()))
	}

	ctx := rpc.WithMeta(r.Context(), rpc.Meta{
		Transport: rpc.TransportHTTP,
		TraceID:   shared.GetTraceID(r.Context()),
	})
	return h.router.CallProcedure(ctx, p, input)
}

func (h *RPCHandler) respondWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	body := newErrorBody(err, path, shared.GetTraceID(r.Context()))
	shared.LogError(r, body.HTTPStatus, body.Message, err)
	shared.RespondWithJSON(w, r, body.HTTPStatus, ErrorResponse{Error: body})
}

var errBatchInput = errors.New("batch input must be an object keyed by call index")

// batchInputs splits a batch input into per-call inputs keyed by index.
func batchInputs(input any) (map[string]any, error) {
	if input == nil {
		return map[string]any{}, nil
	}
	m, ok := input.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %w", rpc.ErrParse, errBatchInput)
	}
	return m, nil
}

func isBatch(r *http.Request) bool {
	v := r.URL.Query().Get(BatchParam)
	return v == "1" || v == "true"
}

func methodFor(kind rpc.Kind) string {
	if kind == rpc.KindMutation {
		return http.MethodPost
	}
	return http.MethodGet
}
