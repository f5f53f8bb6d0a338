package money

import (
	"math"
	"testing"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		currency  string
		wantMinor int64
		wantErr   bool
	}{
		{name: "two decimal currency", amount: 12.349, currency: "EUR", wantMinor: 1235},
		{name: "zero decimal currency", amount: 1200.6, currency: "JPY", wantMinor: 1201},
		{name: "three decimal currency", amount: 1.2347, currency: "KWD", wantMinor: 1235},
		{name: "lowercase code accepted", amount: 5, currency: "usd", wantMinor: 500},
		{name: "negative amount", amount: -0.006, currency: "USD", wantMinor: -1},
		{name: "bad code length", amount: 1, currency: "EURO", wantErr: true},
		{name: "non-letter code", amount: 1, currency: "E1R", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromFloat(tt.amount, tt.currency)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromFloat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && m.MinorUnits != tt.wantMinor {
				t.Errorf("MinorUnits = %d, want %d", m.MinorUnits, tt.wantMinor)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m, err := FromFloat(19.99, "USD")
	if err != nil {
		t.Fatalf("FromFloat failed: %v", err)
	}
	if got := m.Float64(); math.Abs(got-19.99) > 1e-9 {
		t.Errorf("Float64() = %v, want 19.99", got)
	}
	if got := m.String(); got != "19.99 USD" {
		t.Errorf("String() = %q, want %q", got, "19.99 USD")
	}
}

func TestAdd(t *testing.T) {
	a, _ := FromFloat(1.10, "EUR")
	b, _ := FromFloat(2.25, "EUR")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.MinorUnits != 335 {
		t.Errorf("sum = %d minor units, want 335", sum.MinorUnits)
	}

	c, _ := FromFloat(1, "USD")
	if _, err := a.Add(c); err == nil {
		t.Error("expected currency mismatch error, got nil")
	}
}

func TestRound(t *testing.T) {
	if got := Round(33.333333, "EUR"); got != 33.33 {
		t.Errorf("Round EUR = %v, want 33.33", got)
	}
	if got := Round(33.5, "JPY"); got != 34 {
		t.Errorf("Round JPY = %v, want 34", got)
	}
	if got := Round(1.23456, "KWD"); got != 1.235 {
		t.Errorf("Round KWD = %v, want 1.235", got)
	}
}
