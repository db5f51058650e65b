package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// --- Mocks ---

type mockConverter struct {
	mu    sync.Mutex
	rates map[string]float64
	err   error
	calls int
	froms []string
}

func (m *mockConverter) Convert(_ context.Context, amount float64, from, to string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.froms = append(m.froms, from)
	if m.err != nil {
		return 0, m.err
	}
	rate, ok := m.rates[to]
	if !ok {
		return 0, domain.ErrRateUnavailable
	}
	return amount * rate, nil
}

// --- Tests ---

func TestNormalize(t *testing.T) {
	conv := &mockConverter{rates: map[string]float64{"EUR": 0.5}}
	svc := New(conv, "")

	rows := []domain.Row{
		{"name": "lamp", "price": "120 USD"},
		{"name": "gift", "price": "cheap item"},
		{"name": "free", "price": ""},
		{"name": "dollar", "price": "$12 USD"},
		{"name": "chair", "price": "7.5 USD"},
	}

	got, err := svc.Normalize(context.Background(), rows, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"60 EUR", "cheap item", "", "$12 USD", "3.75 EUR"}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i]["price"] != w {
			t.Errorf("row %d: expected price %q, got %q", i, w, got[i]["price"])
		}
		if got[i]["name"] != rows[i]["name"] {
			t.Errorf("row %d: order changed", i)
		}
	}
	if conv.calls != 2 {
		t.Errorf("expected 2 conversions, got %d", conv.calls)
	}
	for _, from := range conv.froms {
		if from != "USD" {
			t.Errorf("expected conversion from USD, got %s", from)
		}
	}
	// input rows are not mutated
	if rows[0]["price"] != "120 USD" {
		t.Errorf("input row mutated: %q", rows[0]["price"])
	}
}

func TestNormalize_EmptyTarget(t *testing.T) {
	conv := &mockConverter{}
	svc := New(conv, "price")

	rows := []domain.Row{{"price": "120 USD"}}
	got, err := svc.Normalize(context.Background(), rows, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0]["price"] != "120 USD" {
		t.Errorf("expected unchanged price, got %q", got[0]["price"])
	}
	if conv.calls != 0 {
		t.Errorf("expected no conversions, got %d", conv.calls)
	}
}

func TestNormalize_CustomField(t *testing.T) {
	svc := New(&mockConverter{rates: map[string]float64{"GBP": 2}}, "cost")

	got, err := svc.Normalize(context.Background(), []domain.Row{{"cost": "3 USD", "price": "5 USD"}}, "GBP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0]["cost"] != "6 GBP" {
		t.Errorf("expected 6 GBP, got %q", got[0]["cost"])
	}
	if got[0]["price"] != "5 USD" {
		t.Errorf("expected price untouched, got %q", got[0]["price"])
	}
}

func TestNormalize_TargetWrittenAsGiven(t *testing.T) {
	conv := &mockConverter{rates: map[string]float64{"chf": 2}}
	svc := New(conv, "")

	got, err := svc.Normalize(context.Background(), []domain.Row{{"price": "3 USD"}}, "chf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0]["price"] != "6 chf" {
		t.Errorf("expected the target code unchanged, got %q", got[0]["price"])
	}
}

func TestNormalize_BlankTarget(t *testing.T) {
	conv := &mockConverter{}
	rows := []domain.Row{{"price": "120 USD"}}

	got, err := New(conv, "").Normalize(context.Background(), rows, "  ")
	if err != nil || got[0]["price"] != "120 USD" || conv.calls != 0 {
		t.Fatalf("blank target should be the identity, got %v, %v (%d calls)", got, err, conv.calls)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		conv *mockConverter
		want error
	}{
		{"rate unavailable", &mockConverter{rates: map[string]float64{}}, domain.ErrRateUnavailable},
		{"upstream down", &mockConverter{err: domain.ErrUpstreamUnavailable}, domain.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.conv, "")
			rows := []domain.Row{{"price": "1 USD"}, {"price": "2 USD"}}

			got, err := svc.Normalize(context.Background(), rows, "XYZ")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if got != nil {
				t.Error("expected no partial result")
			}
		})
	}
}

func TestNormalize_NoNumericRows(t *testing.T) {
	conv := &mockConverter{err: domain.ErrUpstreamUnavailable}
	svc := New(conv, "")

	got, err := svc.Normalize(context.Background(), []domain.Row{{"price": "ask"}}, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0]["price"] != "ask" {
		t.Errorf("expected passthrough, got %q", got[0]["price"])
	}
}
