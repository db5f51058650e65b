// Package retrieval finds catalog rows related to a search term by embedding similarity.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

// DefaultEmbeddingField is the row column embedded for ranking.
const DefaultEmbeddingField = "embeddingText"

// Options tunes the retrieval engine.
type Options struct {
	EmbeddingField string
	// Concurrency bounds in-flight row embeddings. 0 means unbounded.
	Concurrency int
}

// Service ranks catalog rows against a search term.
type Service struct {
	catalog     CatalogSource
	embed       Embedder
	field       string
	concurrency int
}

// New creates a retrieval service.
func New(catalog CatalogSource, embed Embedder, opts Options) *Service {
	if opts.EmbeddingField == "" {
		opts.EmbeddingField = DefaultEmbeddingField
	}
	return &Service{
		catalog:     catalog,
		embed:       embed,
		field:       opts.EmbeddingField,
		concurrency: opts.Concurrency,
	}
}

// FindRelated returns at most topN rows. The catalog is reloaded and every row
// re-embedded on each call.
func (s *Service) FindRelated(ctx context.Context, searchTerm string, topN int) ([]domain.Row, error) {
	rows, err := s.catalog.LoadRows(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return nil, fmt.Errorf("load catalog: %v: %w", err, domain.ErrCatalogUnavailable)
	}
	metrics.CatalogRowsLoaded.Observe(float64(len(rows)))

	if topN <= 0 || len(rows) == 0 {
		return []domain.Row{}, nil
	}

	start := time.Now()
	query, err := s.embed.Embed(ctx, searchTerm)
	if err != nil {
		return nil, embeddingError("embed search term", err)
	}

	vectors, err := s.embedRows(ctx, rows)
	if err != nil {
		return nil, err
	}

	ranked := Rank(query.Embedding, rows, vectors, topN)
	out := make([]domain.Row, len(ranked))
	for i, r := range ranked {
		out[i] = r.Row
	}

	logger.FromContext(ctx).Debug("Catalog ranked",
		zap.Int("rows", len(rows)),
		zap.Int("returned", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// embedRows embeds every row concurrently. The first failure cancels the rest and
// no partial result is returned.
func (s *Service) embedRows(ctx context.Context, rows []domain.Row) ([][]float32, error) {
	vectors := make([][]float32, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, row := range rows {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, row.Get(s.field))
			if err != nil {
				return embeddingError(fmt.Sprintf("embed row %d", i), err)
			}
			vectors[i] = res.Embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func embeddingError(what string, err error) error {
	if errors.Is(err, domain.ErrEmbeddingFailure) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%s: %v: %w", what, err, domain.ErrEmbeddingFailure)
}
