package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

// User exists here only for the stored-role check on dashboard actions;
// credential and session management live in the identity provider.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
