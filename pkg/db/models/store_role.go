package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreRole grants a user a named permission set within one store. The order
// and stock core only reads these rows through the authz capability.
type StoreRole struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_store_roles_user_store"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_store_roles_user_store"`
	IsOwner     bool      `gorm:"column:is_owner;not null;default:false"`
	Permissions string    `gorm:"column:permissions;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *StoreRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
