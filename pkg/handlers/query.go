package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/quantrail/quantrail-engine/pkg/pipeline"
)

// QueryHandler exposes the analytic query endpoint.
type QueryHandler struct {
	pipe   *pipeline.Pipeline
	logger *zap.Logger
}

// NewQueryHandler creates a QueryHandler driving the given pipeline.
func NewQueryHandler(pipe *pipeline.Pipeline, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{pipe: pipe, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/query", h.Query)
}

// Query handles POST /api/query requests. The body is a pipeline.Request;
// the response is a pipeline.Result or a classified error.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	result, err := h.pipe.Run(r.Context(), &req)
	if err != nil {
		status, code := classifyStatus(err)
		h.logger.Warn("query request failed",
			zap.String("code", code),
			zap.Error(err),
		)
		_ = ErrorResponse(w, status, code, err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// classifyStatus maps pipeline error kinds onto HTTP statuses.
func classifyStatus(err error) (int, string) {
	var pipeErr *pipeline.Error
	if !errors.As(err, &pipeErr) {
		return http.StatusInternalServerError, "internal"
	}

	switch pipeErr.Kind {
	case pipeline.ErrBindMismatch, pipeline.ErrUnsafeParameter:
		return http.StatusBadRequest, string(pipeErr.Kind)
	case pipeline.ErrTimeout:
		return http.StatusGatewayTimeout, string(pipeErr.Kind)
	case pipeline.ErrConnection:
		return http.StatusBadGateway, string(pipeErr.Kind)
	case pipeline.ErrPermission:
		return http.StatusForbidden, string(pipeErr.Kind)
	case pipeline.ErrSyntax, pipeline.ErrConstraint:
		return http.StatusUnprocessableEntity, string(pipeErr.Kind)
	default:
		return http.StatusInternalServerError, string(pipeErr.Kind)
	}
}
