package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// Order is the aggregate root for a customer's cart and every order it turns
// into. Exactly one order per (customer, store) holds the "cart" status at any
// time; all other rows are status-advanced history and never deleted.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID    uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID *uuid.UUID        `gorm:"column:customer_id;type:uuid;index"`
	Status     enums.OrderStatus `gorm:"column:status;type:text;not null;default:'cart'"`

	IsPaid        bool                 `gorm:"column:is_paid;not null;default:false"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:text"`

	Phone      string `gorm:"column:phone;not null;default:''"`
	Address    string `gorm:"column:address;not null;default:''"`
	City       string `gorm:"column:city;not null;default:''"`
	State      string `gorm:"column:state;not null;default:''"`
	PostalCode string `gorm:"column:postal_code;not null;default:''"`
	Country    string `gorm:"column:country;not null;default:''"`

	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	FinalAmount      decimal.Decimal `gorm:"column:final_amount;type:numeric(12,2);not null;default:0"`
	EmailDiscount    decimal.Decimal `gorm:"column:email_discount;type:numeric(12,2);not null;default:0"`
	CustomerDiscount decimal.Decimal `gorm:"column:customer_discount;type:numeric(12,2);not null;default:0"`
	CouponDiscount   decimal.Decimal `gorm:"column:coupon_discount;type:numeric(12,2);not null;default:0"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Promotions    []Promotion          `gorm:"many2many:order_promotions"`

	// Movements belong to the stock ledger, not to this row. The orders
	// service attaches them for single-order reads so the API can return
	// the full picture.
	Movements []StockMovement `gorm:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
