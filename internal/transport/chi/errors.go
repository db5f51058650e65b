package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// ErrorCode is the machine-readable error code in error responses.
type ErrorCode string

// Error codes returned to clients.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInvalidArguments    ErrorCode = "invalid_arguments"
	CodeUnknownCapability   ErrorCode = "unknown_capability"
	CodeNoActionSelected    ErrorCode = "no_action_selected"
	CodeRateUnavailable     ErrorCode = "rate_unavailable"
	CodeEmbeddingFailure    ErrorCode = "embedding_failure"
	CodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	CodeCatalogUnavailable  ErrorCode = "catalog_unavailable"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is checked in order; the first match wins.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidArguments, http.StatusBadRequest, CodeInvalidArguments),
		sentinelHandler(domain.ErrUnknownCapability, http.StatusUnprocessableEntity, CodeUnknownCapability),
		sentinelHandler(domain.ErrNoActionSelected, http.StatusUnprocessableEntity, CodeNoActionSelected),
		sentinelHandler(domain.ErrRateUnavailable, http.StatusUnprocessableEntity, CodeRateUnavailable),
		sentinelHandler(domain.ErrEmbeddingFailure, http.StatusBadGateway, CodeEmbeddingFailure),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, CodeUpstreamUnavailable),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, CodeCatalogUnavailable),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Only the sentinel text reaches the client.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
