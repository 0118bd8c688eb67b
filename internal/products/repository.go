package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
)

// Repository defines catalog persistence used by the storefront and checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var result []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = TRUE", ids).
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var result []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = TRUE").
		Order("name ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DecrementStock reduces stock by qty, flooring at zero so oversold items
// never go negative.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", qty)).
		Error
}
