package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/enums"
	"github.com/smoralesc/verdeo-backend/pkg/types"
)

// Order is created when checkout is initiated (before payment) and mutated by
// the payment reconciler and the dashboard status actions. Orders are never
// deleted by the checkout flow.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        *uuid.UUID        `gorm:"column:user_id;type:uuid"` // nil for guest checkout
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null"`
	ShippingCents int               `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCents int               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int               `gorm:"column:total_cents;not null"`
	CouponCode    *string           `gorm:"column:coupon_code"`

	CustomerName  string `gorm:"column:customer_name;not null"`
	CustomerEmail string `gorm:"column:customer_email;not null"`
	CustomerPhone string `gorm:"column:customer_phone"`

	ShippingAddress string `gorm:"column:shipping_address;not null"`
	ShippingCity    string `gorm:"column:shipping_city;not null"`
	ShippingRegion  string `gorm:"column:shipping_region"`
	PostalCode      string `gorm:"column:postal_code"`

	// Set once by the reconciler on confirmation.
	PaymentID       *string       `gorm:"column:payment_id"`
	PaymentMetadata types.JSONMap `gorm:"column:payment_metadata;type:jsonb;serializer:json"`
	PaidAt          *time.Time    `gorm:"column:paid_at"`

	// Set by the dashboard when the order ships.
	Carrier        *string `gorm:"column:carrier"`
	TrackingNumber *string `gorm:"column:tracking_number"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
