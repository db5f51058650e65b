package price

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"120 USD", 120, true},
		{"19.99 dollars", 19.99, true},
		{"1e3 USD", 1000, true},
		{"  42   EUR ", 42, true},
		{"", 0, false},
		{"approx", 0, false},
		{"120", 0, false},
		{"cheap item", 0, false},
		{"$120 USD", 0, false},
		{"NaN USD", 0, false},
		{"Inf USD", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Parse(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{60, "EUR", "60 EUR"},
		{12.5, "GBP", "12.5 GBP"},
		{0.1, "JPY", "0.1 JPY"},
		{1234567.25, "INR", "1234567.25 INR"},
	}
	for _, tc := range tests {
		if got := Format(tc.amount, tc.currency); got != tc.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}
