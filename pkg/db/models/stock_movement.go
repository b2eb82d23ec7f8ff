package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// StockMovement is an append-only audit record for every stock mutation.
// Quantity is signed: negative means stock left the sellable pool, positive
// means it entered. Movements tied to an order carry its id directly so the
// audit query never has to parse reason text.
type StockMovement struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	StockItemID    uuid.UUID               `gorm:"column:stock_item_id;type:uuid;not null;index"`
	VariantID      uuid.UUID               `gorm:"column:variant_id;type:uuid;not null;index"`
	StoreID        uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index"`
	OrderID        *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	Quantity       int                     `gorm:"column:quantity;not null"`
	Type           enums.StockMovementType `gorm:"column:type;type:text;not null"`
	Reason         string                  `gorm:"column:reason;not null;default:''"`
	OriginatorType enums.OriginatorType    `gorm:"column:originator_type;type:text;not null"`
	OriginatorID   uuid.UUID               `gorm:"column:originator_id;type:uuid;not null"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
