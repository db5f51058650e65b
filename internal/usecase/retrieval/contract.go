package retrieval

import (
	"context"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// CatalogSource loads every product row in source order.
type CatalogSource interface {
	LoadRows(ctx context.Context) ([]domain.Row, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
