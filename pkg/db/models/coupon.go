package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

// Coupon holds a discount code. Codes are stored upper-cased and matched
// case-insensitively.
type Coupon struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType     enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue    int                `gorm:"column:discount_value;not null"`
	ExpiresAt        *time.Time         `gorm:"column:expires_at"`
	UsageLimit       *int               `gorm:"column:usage_limit"`
	UsageCount       int                `gorm:"column:usage_count;not null;default:0"`
	MinPurchaseCents int                `gorm:"column:min_purchase_cents;not null;default:0"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
