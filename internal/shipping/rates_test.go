package shipping

import (
	"testing"

	"github.com/smoralesc/verdeo-backend/pkg/config"
)

func TestRateCents(t *testing.T) {
	quoter, err := NewQuoter(config.ShippingConfig{
		CityRates: map[string]int{
			"Cordoba": 350000,
			"rosario": 420000,
		},
		DefaultRateCents: 500000,
	})
	if err != nil {
		t.Fatalf("NewQuoter failed: %v", err)
	}

	cases := []struct {
		city string
		want int
	}{
		{"cordoba", 350000},
		{"CORDOBA", 350000},
		{"  Cordoba  ", 350000},
		{"rosario", 420000},
		{"mendoza", 500000},
		{"", 500000},
	}
	for _, tc := range cases {
		if got := quoter.RateCents(tc.city); got != tc.want {
			t.Errorf("RateCents(%q) = %d, want %d", tc.city, got, tc.want)
		}
	}
}

func TestNewQuoterRejectsNegativeRates(t *testing.T) {
	_, err := NewQuoter(config.ShippingConfig{
		CityRates:        map[string]int{"cordoba": -1},
		DefaultRateCents: 500000,
	})
	if err == nil {
		t.Fatalf("expected error for negative rate")
	}
}

func TestRateCentsCollapsesInnerWhitespace(t *testing.T) {
	quoter, err := NewQuoter(config.ShippingConfig{
		CityRates:        map[string]int{"buenos aires": 300000},
		DefaultRateCents: 500000,
	})
	if err != nil {
		t.Fatalf("NewQuoter failed: %v", err)
	}
	if got := quoter.RateCents("Buenos  Aires"); got != 300000 {
		t.Fatalf("expected normalized match, got %d", got)
	}
}
