package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures a purchased line. PriceAtTimeCents is the unit price at
// checkout, deliberately decoupled from later catalog price changes.
type OrderItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName      string    `gorm:"column:product_name;not null"`
	Quantity         int       `gorm:"column:quantity;not null"`
	PriceAtTimeCents int       `gorm:"column:price_at_time_cents;not null"`
	Product          *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
