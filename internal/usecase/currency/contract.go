package currency

import "context"

// RateProvider returns the latest exchange rate table relative to base.
type RateProvider interface {
	Rates(ctx context.Context, base string) (map[string]float64, error)
}
