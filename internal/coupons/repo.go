package coupons

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
)

// Repository defines coupon persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByCode matches case-insensitively; codes are stored upper-cased.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", normalizeCode(code)).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) IncrementUsage(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", normalizeCode(code)).
		Update("usage_count", gorm.Expr("usage_count + 1")).
		Error
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
