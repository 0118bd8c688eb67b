package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the authoritative catalog listing. PriceCents (or SalePriceCents
// when set) is the only price the checkout path trusts.
type Product struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU            string     `gorm:"column:sku;not null;uniqueIndex"`
	Name           string     `gorm:"column:name;not null"`
	Description    *string    `gorm:"column:description"`
	PriceCents     int        `gorm:"column:price_cents;not null"`
	SalePriceCents *int       `gorm:"column:sale_price_cents"`
	Stock          int        `gorm:"column:stock;not null;default:0"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents returns the sale price when present, the list price
// otherwise.
func (p Product) EffectivePriceCents() int {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}
