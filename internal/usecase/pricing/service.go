// Package pricing rewrites catalog prices into a requested currency.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/price"
)

const (
	// DefaultPriceField is the row column holding the price text.
	DefaultPriceField = "price"
	// sourceCurrency is the currency every catalog price is assumed to be in.
	sourceCurrency = "USD"
)

// Service normalizes row prices.
type Service struct {
	conv  Converter
	field string
}

// New creates a price normalizer. An empty field falls back to DefaultPriceField.
func New(conv Converter, field string) *Service {
	if field == "" {
		field = DefaultPriceField
	}
	return &Service{conv: conv, field: field}
}

// Normalize converts every numeric price into target. Rows with a non-numeric price
// pass through untouched, order is preserved, and an empty target returns rows as is.
// Any conversion error aborts the whole call. target is written into the price as given;
// callers pass an already normalized code.
func (s *Service) Normalize(ctx context.Context, rows []domain.Row, target string) ([]domain.Row, error) {
	if strings.TrimSpace(target) == "" {
		return rows, nil
	}

	out := make([]domain.Row, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range rows {
		amount, ok := price.Parse(r.Get(s.field))
		if !ok {
			out[i] = r
			continue
		}
		g.Go(func() error {
			converted, err := s.conv.Convert(gctx, amount, sourceCurrency, target)
			if err != nil {
				return fmt.Errorf("convert row %d price: %w", i, err)
			}
			out[i] = r.With(s.field, price.Format(converted, target))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
