package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/internal/coupons"
	"github.com/smoralesc/verdeo-backend/internal/products"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
	"github.com/smoralesc/verdeo-backend/pkg/types"
)

// ConfirmOutcome reports what a confirmation attempt did.
type ConfirmOutcome string

const (
	// OutcomeConfirmed means this attempt transitioned the order to paid.
	OutcomeConfirmed ConfirmOutcome = "confirmed"
	// OutcomeAlreadyProcessed means a concurrent or earlier attempt won.
	OutcomeAlreadyProcessed ConfirmOutcome = "already_processed"
)

// ConfirmInput carries the provider's approved payment snapshot.
type ConfirmInput struct {
	OrderID   uuid.UUID
	PaymentID string
	Metadata  types.JSONMap
}

// SetStatusInput carries optional shipment data for manual transitions.
type SetStatusInput struct {
	Carrier        *string
	TrackingNumber *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order reads, payment confirmation, and manual transitions.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (ConfirmOutcome, error)
	SetStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus, input SetStatusInput) (*OrderDTO, error)
}

type service struct {
	tx          txRunner
	repo        Repository
	productRepo products.Repository
	couponRepo  coupons.Repository
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository, productRepo products.Repository, couponRepo coupons.Repository, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repository required")
	}
	if couponRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "coupons repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		tx:          tx,
		repo:        repo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	result, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	dtos := make([]OrderDTO, 0, len(result))
	for _, order := range result {
		dtos = append(dtos, toDTO(order))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &ListResult{Orders: dtos, Total: total, Limit: limit, Offset: filter.Offset}, nil
}

// Confirm reconciles an approved payment into the order. The conditional
// pending->paid update, the stock decrement for every line, and the coupon
// usage bump all commit in one transaction, so concurrent notifications for
// the same payment settle to exactly one confirmation.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (ConfirmOutcome, error) {
	if input.OrderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.PaymentID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	ctx = s.logg.WithPaymentID(ctx, input.PaymentID)

	outcome := OutcomeConfirmed
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ConfirmPending(ctx, input.OrderID, input.PaymentID, input.Metadata, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirming order")
		}

		if rows == 0 {
			if _, err := repo.FindByID(ctx, input.OrderID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
			}
			// The order left pending already: an earlier notification won.
			outcome = OutcomeAlreadyProcessed
			s.logg.Info(ctx, "order already processed, skipping confirmation")
			return nil
		}

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading confirmed order")
		}

		productRepo := s.productRepo.WithTx(tx)
		var decrementErr error
		for _, item := range order.Items {
			if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				decrementErr = multierr.Append(decrementErr, err)
			}
		}
		if decrementErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, decrementErr, "decrementing stock")
		}

		if order.CouponCode != nil && *order.CouponCode != "" {
			if err := s.couponRepo.WithTx(tx).IncrementUsage(ctx, *order.CouponCode); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "incrementing coupon usage")
			}
		}

		s.logg.Info(ctx, "order confirmed")
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// SetStatus applies a manual dashboard transition, enforcing the lifecycle
// table: pending->paid|cancelled, paid->shipped|cancelled, shipped->delivered.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus, input SetStatusInput) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	ctx = s.logg.WithOrderID(ctx, id.String())

	var dto OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}

		if !order.Status.CanTransition(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition").
				WithDetails(map[string]any{
					"from": order.Status.String(),
					"to":   next.String(),
				})
		}

		update := StatusUpdate{Status: next}
		if next == enums.OrderStatusShipped {
			update.Carrier = input.Carrier
			update.TrackingNumber = input.TrackingNumber
		}
		if next == enums.OrderStatusPaid && order.PaidAt == nil {
			now := s.now()
			update.PaidAt = &now
		}

		if err := repo.UpdateStatus(ctx, id, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
		}

		updated, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading order")
		}
		dto = toDTO(*updated)
		s.logg.Info(s.logg.WithField(ctx, "status", next.String()), "order status updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}
