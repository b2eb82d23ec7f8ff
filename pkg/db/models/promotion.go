package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// Promotion is a read-only checkout input. Discount is a percentage unless
// IsFixed is set, in which case it is a flat amount.
type Promotion struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	Type      enums.PromotionType `gorm:"column:type;type:text;not null"`
	Discount  decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null"`
	IsFixed   bool                `gorm:"column:is_fixed;not null;default:false"`
	IsActive  bool                `gorm:"column:is_active;not null;default:true"`
	StartDate time.Time           `gorm:"column:start_date;not null"`
	EndDate   time.Time           `gorm:"column:end_date;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CustomerPromotion links a promotion to an eligible customer.
type CustomerPromotion struct {
	CustomerID  uuid.UUID `gorm:"column:customer_id;type:uuid;primaryKey"`
	PromotionID uuid.UUID `gorm:"column:promotion_id;type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the join table explicit.
func (CustomerPromotion) TableName() string {
	return "customer_promotions"
}
