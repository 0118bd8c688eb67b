package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smoralesc/verdeo-backend/pkg/db/models"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

// Repository reads user accounts. Tokens carry a role claim, but gating
// decisions always go back to the stored row.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RoleByUserID(ctx context.Context, userID string) (enums.UserRole, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RoleByUserID resolves the stored role; unknown or malformed ids resolve to
// customer rather than erroring, so gating simply denies.
func (r *repository) RoleByUserID(ctx context.Context, userID string) (enums.UserRole, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return enums.UserRoleCustomer, nil
	}
	user, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enums.UserRoleCustomer, nil
		}
		return "", err
	}
	return user.Role, nil
}
