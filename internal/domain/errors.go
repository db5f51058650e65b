package domain

import "errors"

var (
	// ErrUpstreamUnavailable signals a network, model or rate provider failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrRateUnavailable signals that the target currency is missing from the rate table.
	ErrRateUnavailable = errors.New("rate unavailable")
	// ErrEmbeddingFailure signals that embedding generation failed for the search term or a row.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrInvalidArguments signals malformed or missing required tool arguments.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrUnknownCapability signals a model invocation outside the closed capability set.
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrNoActionSelected signals that the model proposed no invocation.
	ErrNoActionSelected = errors.New("no action selected")
	// ErrCatalogUnavailable signals that the product catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
