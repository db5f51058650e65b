package sdk

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArguments    = domain.ErrInvalidArguments
	ErrUnknownCapability   = domain.ErrUnknownCapability
	ErrNoActionSelected    = domain.ErrNoActionSelected
	ErrRateUnavailable     = domain.ErrRateUnavailable
	ErrEmbeddingFailure    = domain.ErrEmbeddingFailure
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
	ErrCatalogUnavailable  = domain.ErrCatalogUnavailable

	// ErrUnauthorized is returned when the server rejects the API key.
	ErrUnauthorized = errors.New("unauthorized")
)

// codeSentinels maps server error codes to sentinel errors.
var codeSentinels = map[string]error{
	"invalid_arguments":    ErrInvalidArguments,
	"unknown_capability":   ErrUnknownCapability,
	"no_action_selected":   ErrNoActionSelected,
	"rate_unavailable":     ErrRateUnavailable,
	"embedding_failure":    ErrEmbeddingFailure,
	"upstream_unavailable": ErrUpstreamUnavailable,
	"catalog_unavailable":  ErrCatalogUnavailable,
	"unauthorized":         ErrUnauthorized,
}

// APIError is a non-2xx response from the server.
// It unwraps to the matching sentinel when the code is known.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("shopassist: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("shopassist: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
