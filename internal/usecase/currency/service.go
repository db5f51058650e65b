// Package currency converts amounts through an external rate provider.
package currency

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/logger"
)

// DefaultBase is the only currency rates are resolved against.
const DefaultBase = "USD"

// Service converts amounts from the base currency.
type Service struct {
	rates RateProvider
	base  string
}

// New creates a currency service. An empty base falls back to DefaultBase.
func New(rates RateProvider, base string) *Service {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = DefaultBase
	}
	return &Service{rates: rates, base: base}
}

// Base returns the base currency code.
func (s *Service) Base() string { return s.base }

// Convert converts amount into to. The from code is always replaced by the base
// currency; conversions from other currencies are not supported.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	to = strings.ToUpper(strings.TrimSpace(to))
	if to == "" {
		return 0, fmt.Errorf("target currency is required: %w", domain.ErrInvalidArguments)
	}

	if from = strings.ToUpper(strings.TrimSpace(from)); from != s.base {
		logger.FromContext(ctx).Debug("Source currency overridden",
			zap.String("requested", from),
			zap.String("base", s.base),
		)
	}

	table, err := s.rates.Rates(ctx, s.base)
	if err != nil {
		return 0, fmt.Errorf("fetch rates: %w", err)
	}

	rate, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("no rate for %s: %w", to, domain.ErrRateUnavailable)
	}
	return amount * rate, nil
}
