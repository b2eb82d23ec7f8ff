package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// OrderItemDTO is one line of an order as returned by the API.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// StatusHistoryDTO is one audit row of the order lifecycle.
type StatusHistoryDTO struct {
	ID             uuid.UUID            `json:"id"`
	Status         enums.OrderStatus    `json:"status"`
	Reason         string               `json:"reason,omitempty"`
	OriginatorType enums.OriginatorType `json:"originator_type"`
	OriginatorID   uuid.UUID            `json:"originator_id"`
	CreatedAt      time.Time            `json:"created_at"`
}

// OrderDTO is the full order shape returned by the API.
type OrderDTO struct {
	ID            uuid.UUID            `json:"id"`
	StoreID       uuid.UUID            `json:"store_id"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
	Status        enums.OrderStatus    `json:"status"`
	IsPaid        bool                 `json:"is_paid"`
	PaymentMethod *enums.PaymentMethod `json:"payment_method,omitempty"`

	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`

	TotalAmount      decimal.Decimal `json:"total_amount"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
	EmailDiscount    decimal.Decimal `json:"email_discount"`
	CustomerDiscount decimal.Decimal `json:"customer_discount"`
	CouponDiscount   decimal.Decimal `json:"coupon_discount"`

	Items []OrderItemDTO `json:"items"`

	// Populated on single-order reads and transitions, empty on listings.
	StatusHistory []StatusHistoryDTO  `json:"status_history,omitempty"`
	Movements     []stock.MovementDTO `json:"movements,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDTO maps the stored order to its API shape.
func ToDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:               order.ID,
		StoreID:          order.StoreID,
		CustomerID:       order.CustomerID,
		Status:           order.Status,
		IsPaid:           order.IsPaid,
		PaymentMethod:    order.PaymentMethod,
		Phone:            order.Phone,
		Address:          order.Address,
		City:             order.City,
		State:            order.State,
		PostalCode:       order.PostalCode,
		Country:          order.Country,
		TotalAmount:      order.TotalAmount,
		FinalAmount:      order.FinalAmount,
		EmailDiscount:    order.EmailDiscount,
		CustomerDiscount: order.CustomerDiscount,
		CouponDiscount:   order.CouponDiscount,
		Items:            make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if len(order.StatusHistory) > 0 {
		dto.StatusHistory = HistoryToDTO(order.StatusHistory)
	}
	if len(order.Movements) > 0 {
		dto.Movements = stock.MovementsToDTO(order.Movements)
	}
	return dto
}

// HistoryToDTO maps stored history rows to their API shape.
func HistoryToDTO(entries []models.OrderStatusHistory) []StatusHistoryDTO {
	out := make([]StatusHistoryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, StatusHistoryDTO{
			ID:             entry.ID,
			Status:         entry.Status,
			Reason:         entry.Reason,
			OriginatorType: entry.OriginatorType,
			OriginatorID:   entry.OriginatorID,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return out
}
