package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	"github.com/smoralesc/verdeo-backend/pkg/types"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

// StatusUpdate carries the mutable fields of a manual transition.
type StatusUpdate struct {
	Status         enums.OrderStatus
	Carrier        *string
	TrackingNumber *string
	PaidAt         *time.Time
}

// Repository defines order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	ConfirmPending(ctx context.Context, id uuid.UUID, paymentID string, metadata types.JSONMap, paidAt time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var result []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&result).Error
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ConfirmPending flips a pending order to paid in a single conditional update.
// A zero row count means the order was missing or no longer pending.
func (r *repository) ConfirmPending(ctx context.Context, id uuid.UUID, paymentID string, metadata types.JSONMap, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(models.Order{
			Status:          enums.OrderStatusPaid,
			PaymentID:       &paymentID,
			PaymentMetadata: metadata,
			PaidAt:          &paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	changes := map[string]any{"status": update.Status}
	if update.Carrier != nil {
		changes["carrier"] = *update.Carrier
	}
	if update.TrackingNumber != nil {
		changes["tracking_number"] = *update.TrackingNumber
	}
	if update.PaidAt != nil {
		changes["paid_at"] = *update.PaidAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(changes).
		Error
}
