package products

import (
	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
)

// ProductDTO is the storefront representation of a catalog listing.
type ProductDTO struct {
	ID             uuid.UUID `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	PriceCents     int       `json:"price_cents"`
	SalePriceCents *int      `json:"sale_price_cents,omitempty"`
	InStock        bool      `json:"in_stock"`
	Stock          int       `json:"stock"`
}

func toDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		PriceCents:     p.PriceCents,
		SalePriceCents: p.SalePriceCents,
		InStock:        p.Stock > 0,
		Stock:          p.Stock,
	}
}
