// Package capability defines the closed set of operations the model may invoke.
package capability

import (
	"fmt"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// Kind identifies one of the invocable capabilities.
type Kind string

// Capability names as exposed to the model.
const (
	// Currency converts an amount between currencies.
	Currency Kind = "getCurrencyMessage"
	// Recommendation finds catalog products related to a search term.
	Recommendation Kind = "getRecommendationMessage"
)

// Parse resolves a model-supplied name against the closed set.
func Parse(name string) (Kind, error) {
	switch k := Kind(name); k {
	case Currency, Recommendation:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCapability, name)
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Definition describes a function tool offered to the model.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON schema object.
	Parameters map[string]any
}

// Definitions returns the tool schema for SelectTool: exactly the two capabilities.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        Currency.String(),
			Description: "Convert an amount of money from one currency to another using currency codes.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount": map[string]any{"type": "number"},
					"from":   map[string]any{"type": "string"},
					"to":     map[string]any{"type": "string"},
				},
				"required":             []string{"amount", "from", "to"},
				"additionalProperties": false,
			},
		},
		{
			Name:        Recommendation.String(),
			Description: "Recommend catalog products for a search term, optionally pricing them in another currency.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"searchTerm": map[string]any{"type": "string"},
					"toCurrency": map[string]any{"type": "string"},
				},
				"required":             []string{"searchTerm"},
				"additionalProperties": false,
			},
		},
	}
}
