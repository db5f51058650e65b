package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// CurrencyArgs are the validated arguments of getCurrencyMessage.
type CurrencyArgs struct {
	Amount float64
	From   string
	To     string
}

// RecommendationArgs are the validated arguments of getRecommendationMessage.
// ToCurrency is empty when no conversion was requested.
type RecommendationArgs struct {
	SearchTerm string
	ToCurrency string
}

// DecodeCurrency parses the raw argument payload. All three fields are required.
func DecodeCurrency(raw json.RawMessage) (CurrencyArgs, error) {
	var in struct {
		Amount *float64 `json:"amount"`
		From   *string  `json:"from"`
		To     *string  `json:"to"`
	}
	if err := decodeStrict(raw, &in); err != nil {
		return CurrencyArgs{}, err
	}

	var missing []string
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	if in.From == nil || strings.TrimSpace(*in.From) == "" {
		missing = append(missing, "from")
	}
	if in.To == nil || strings.TrimSpace(*in.To) == "" {
		missing = append(missing, "to")
	}
	if len(missing) > 0 {
		return CurrencyArgs{}, fmt.Errorf("%w: missing %s", domain.ErrInvalidArguments, strings.Join(missing, ", "))
	}

	return CurrencyArgs{
		Amount: *in.Amount,
		From:   normalizeCode(*in.From),
		To:     normalizeCode(*in.To),
	}, nil
}

// DecodeRecommendation parses the raw argument payload. searchTerm is required.
func DecodeRecommendation(raw json.RawMessage) (RecommendationArgs, error) {
	var in struct {
		SearchTerm *string `json:"searchTerm"`
		ToCurrency *string `json:"toCurrency"`
	}
	if err := decodeStrict(raw, &in); err != nil {
		return RecommendationArgs{}, err
	}

	if in.SearchTerm == nil || strings.TrimSpace(*in.SearchTerm) == "" {
		return RecommendationArgs{}, fmt.Errorf("%w: missing searchTerm", domain.ErrInvalidArguments)
	}

	args := RecommendationArgs{SearchTerm: *in.SearchTerm}
	if in.ToCurrency != nil {
		args.ToCurrency = normalizeCode(*in.ToCurrency)
	}
	return args, nil
}

func decodeStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty payload", domain.ErrInvalidArguments)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after arguments", domain.ErrInvalidArguments)
	}
	return nil
}

// normalizeCode upper-cases currency codes; rate tables are keyed by ISO 4217 codes.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
