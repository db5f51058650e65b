package chat

import (
	"context"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/capability"
)

// Model is the language model capability.
type Model interface {
	SelectTool(ctx context.Context, transcript *domain.Transcript, tools []capability.Definition) ([]domain.ToolInvocation, error)
	ComposeText(ctx context.Context, transcript *domain.Transcript) (string, error)
}

// Retriever finds catalog rows related to a search term.
type Retriever interface {
	FindRelated(ctx context.Context, searchTerm string, topN int) ([]domain.Row, error)
}

// Normalizer rewrites row prices into a target currency.
type Normalizer interface {
	Normalize(ctx context.Context, rows []domain.Row, target string) ([]domain.Row, error)
}

// Converter converts an amount between currencies.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}
