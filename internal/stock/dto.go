package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

// MovementDTO is one ledger row as returned by the audit API.
type MovementDTO struct {
	ID             uuid.UUID               `json:"id"`
	VariantID      uuid.UUID               `json:"variant_id"`
	StoreID        uuid.UUID               `json:"store_id"`
	OrderID        *uuid.UUID              `json:"order_id,omitempty"`
	Quantity       int                     `json:"quantity"`
	Type           enums.StockMovementType `json:"type"`
	Reason         string                  `json:"reason,omitempty"`
	OriginatorType enums.OriginatorType    `json:"originator_type"`
	OriginatorID   uuid.UUID               `json:"originator_id"`
	CreatedAt      time.Time               `json:"created_at"`
}

// MovementToDTO maps one stored movement to its API shape.
func MovementToDTO(movement *models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:             movement.ID,
		VariantID:      movement.VariantID,
		StoreID:        movement.StoreID,
		OrderID:        movement.OrderID,
		Quantity:       movement.Quantity,
		Type:           movement.Type,
		Reason:         movement.Reason,
		OriginatorType: movement.OriginatorType,
		OriginatorID:   movement.OriginatorID,
		CreatedAt:      movement.CreatedAt,
	}
}

// MovementsToDTO maps stored movements to their API shape.
func MovementsToDTO(movements []models.StockMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(movements))
	for i := range movements {
		out = append(out, MovementToDTO(&movements[i]))
	}
	return out
}
