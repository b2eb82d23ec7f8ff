package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// OrderStatusHistory records one row per status transition, append-only.
type OrderStatusHistory struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null"`
	Reason         string               `gorm:"column:reason;not null;default:''"`
	OriginatorType enums.OriginatorType `gorm:"column:originator_type;type:text;not null"`
	OriginatorID   uuid.UUID            `gorm:"column:originator_id;type:uuid;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
