package shipping

import (
	"strings"

	"github.com/smoralesc/verdeo-backend/pkg/config"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
)

// Quoter prices shipping server-side from the destination city. Client
// submitted shipping amounts are never trusted.
type Quoter struct {
	rates       map[string]int
	defaultRate int
}

// NewQuoter builds a quoter from the configured city rate table.
func NewQuoter(cfg config.ShippingConfig) (*Quoter, error) {
	if cfg.DefaultRateCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "default shipping rate must be non-negative")
	}
	rates := make(map[string]int, len(cfg.CityRates))
	for city, cents := range cfg.CityRates {
		if cents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "shipping rate must be non-negative").
				WithDetails(map[string]any{"city": city})
		}
		rates[normalizeCity(city)] = cents
	}
	return &Quoter{rates: rates, defaultRate: cfg.DefaultRateCents}, nil
}

// RateCents returns the flat shipping rate for the city, falling back to the
// default rate for unknown destinations.
func (q *Quoter) RateCents(city string) int {
	if rate, ok := q.rates[normalizeCity(city)]; ok {
		return rate
	}
	return q.defaultRate
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
