package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockItem tracks on-hand and reserved counts for a variant within a store.
// Available stock is on_hand_qty - reserved_qty. Rows are mutated only through
// the stock ledger, which pairs every change with a StockMovement in the same
// transaction and guards the reserved_qty >= 0 and reserved_qty <= on_hand_qty
// invariants.
type StockItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID   uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_stock_items_variant_store"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:idx_stock_items_variant_store"`
	OnHandQty   int       `gorm:"column:on_hand_qty;not null;default:0"`
	ReservedQty int       `gorm:"column:reserved_qty;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableQty returns the portion of on-hand stock not earmarked for orders.
func (s StockItem) AvailableQty() int {
	return s.OnHandQty - s.ReservedQty
}

func (s *StockItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
