package coupons

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
)

// CouponDTO is the validated coupon as returned to the storefront, with the
// discount already priced against the submitted subtotal.
type CouponDTO struct {
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue int                `json:"discount_value"`
	DiscountCents int                `json:"discount_cents"`
}

// Service validates coupon codes against an order subtotal.
type Service interface {
	Validate(ctx context.Context, code string, subtotalCents int) (*CouponDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the coupons service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "coupons repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string, subtotalCents int) (*CouponDTO, error) {
	if normalizeCode(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if subtotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be non-negative")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid coupon code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading coupon")
	}

	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invalid coupon code")
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon expired")
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon usage limit reached")
	}
	if subtotalCents < coupon.MinPurchaseCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "minimum purchase not met").
			WithDetails(map[string]any{
				"min_purchase_cents": coupon.MinPurchaseCents,
				"subtotal_cents":     subtotalCents,
			})
	}

	return &CouponDTO{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		DiscountCents: DiscountCents(coupon, subtotalCents),
	}, nil
}

// DiscountCents prices the coupon against the subtotal. Percentage discounts
// round half-up to the nearest cent; either type never exceeds the subtotal.
func DiscountCents(coupon *models.Coupon, subtotalCents int) int {
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount := decimal.NewFromInt(int64(subtotalCents)).
			Mul(decimal.NewFromInt(int64(coupon.DiscountValue))).
			Div(decimal.NewFromInt(100)).
			Round(0)
		if cents := int(discount.IntPart()); cents <= subtotalCents {
			return cents
		}
		return subtotalCents
	case enums.DiscountTypeFixed:
		if coupon.DiscountValue > subtotalCents {
			return subtotalCents
		}
		return coupon.DiscountValue
	default:
		return 0
	}
}
