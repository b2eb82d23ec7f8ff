package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/metrics"
)

// Originator identifies who caused a stock movement.
type Originator struct {
	Type enums.OriginatorType
	ID   uuid.UUID
}

// MovementInput carries the parameters shared by the order-driven ledger
// operations. Quantity is the positive magnitude of units touched; the
// ledger derives the signed movement quantity from the operation.
type MovementInput struct {
	VariantID  uuid.UUID
	StoreID    uuid.UUID
	Quantity   int
	OrderID    uuid.UUID
	Reason     string
	Originator Originator
}

// AdjustInput carries a manual correction. Delta is signed: positive adds
// sellable stock, negative removes it.
type AdjustInput struct {
	VariantID  uuid.UUID
	StoreID    uuid.UUID
	Delta      int
	Type       enums.StockMovementType
	Reason     string
	Originator Originator
}

// Ledger is the single authority over stock counters. Every mutation happens
// through a single conditional UPDATE so that concurrent callers cannot
// oversell, and every successful mutation writes a movement row in the same
// transaction as the counter change.
type Ledger interface {
	// Reserve moves qty units from available into reserved. Fails with a
	// CONFLICT error when fewer than qty units are available.
	Reserve(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error)
	// Release returns qty reserved units to the available pool.
	Release(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error)
	// ConsumeOnShip records physical departure of reserved units while the
	// order is still open. Counters are untouched; the reservation stands
	// until the order completes, so a late cancellation can still release it.
	ConsumeOnShip(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error)
	// Finalize settles a shipped order as a sale: reserved and on-hand both
	// decrease by qty and a sale row is written.
	Finalize(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error)
	// Adjust applies a manual signed correction to on-hand stock.
	Adjust(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockMovement, error)
}

type ledger struct {
	repo    Repository
	metrics *metrics.OrderMetrics
}

// NewLedger builds the stock ledger. Metrics may be nil.
func NewLedger(repo Repository, m *metrics.OrderMetrics) (Ledger, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "stock: repository is required")
	}
	return &ledger{repo: repo, metrics: m}, nil
}

func (l *ledger) Reserve(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "stock: reserve quantity must be positive")
	}

	item, err := l.findItem(ctx, tx, input.VariantID, input.StoreID)
	if err != nil {
		return nil, err
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE stock_items
		 SET reserved_qty = reserved_qty + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND on_hand_qty - reserved_qty >= ?`,
		input.Quantity, item.ID, input.Quantity,
	)
	if res.Error != nil {
		return nil, errors.Wrap(errors.CodeInternal, res.Error, "stock: reserve update failed")
	}
	if res.RowsAffected == 0 {
		l.metrics.IncOversellRejection()
		return nil, errors.New(errors.CodeConflict, fmt.Sprintf(
			"insufficient stock for variant %s: %d available, %d requested",
			input.VariantID, item.AvailableQty(), input.Quantity,
		)).WithDetails(map[string]any{
			"variantId": input.VariantID.String(),
			"available": item.AvailableQty(),
			"requested": input.Quantity,
		})
	}

	return l.writeMovement(ctx, tx, item, input, enums.StockMovementTypeReserved, -input.Quantity)
}

func (l *ledger) Release(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "stock: release quantity must be positive")
	}

	item, err := l.findItem(ctx, tx, input.VariantID, input.StoreID)
	if err != nil {
		return nil, err
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE stock_items
		 SET reserved_qty = reserved_qty - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND reserved_qty >= ?`,
		input.Quantity, item.ID, input.Quantity,
	)
	if res.Error != nil {
		return nil, errors.Wrap(errors.CodeInternal, res.Error, "stock: release update failed")
	}
	if res.RowsAffected == 0 {
		return nil, errors.New(errors.CodeConflict, fmt.Sprintf(
			"cannot release %d units for variant %s: only %d reserved",
			input.Quantity, input.VariantID, item.ReservedQty,
		))
	}

	return l.writeMovement(ctx, tx, item, input, enums.StockMovementTypeUnreserved, input.Quantity)
}

func (l *ledger) ConsumeOnShip(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "stock: ship quantity must be positive")
	}

	item, err := l.findItem(ctx, tx, input.VariantID, input.StoreID)
	if err != nil {
		return nil, err
	}
	if item.ReservedQty < input.Quantity {
		return nil, errors.New(errors.CodeConflict, fmt.Sprintf(
			"cannot ship %d units for variant %s: only %d reserved",
			input.Quantity, input.VariantID, item.ReservedQty,
		))
	}

	// Audit only. Goods leave the warehouse here but the accounting settles
	// at completion, where Finalize collapses the reservation into a sale.
	return l.writeMovement(ctx, tx, item, input, enums.StockMovementTypeShipped, -input.Quantity)
}

func (l *ledger) Finalize(ctx context.Context, tx *gorm.DB, input MovementInput) (*models.StockMovement, error) {
	if input.Quantity <= 0 {
		return nil, errors.New(errors.CodeValidation, "stock: finalize quantity must be positive")
	}

	item, err := l.findItem(ctx, tx, input.VariantID, input.StoreID)
	if err != nil {
		return nil, err
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE stock_items
		 SET reserved_qty = reserved_qty - ?, on_hand_qty = on_hand_qty - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND reserved_qty >= ? AND on_hand_qty >= ?`,
		input.Quantity, input.Quantity, item.ID, input.Quantity, input.Quantity,
	)
	if res.Error != nil {
		return nil, errors.Wrap(errors.CodeInternal, res.Error, "stock: finalize update failed")
	}
	if res.RowsAffected == 0 {
		return nil, errors.New(errors.CodeConflict, fmt.Sprintf(
			"cannot finalize %d units for variant %s: %d reserved, %d on hand",
			input.Quantity, input.VariantID, item.ReservedQty, item.OnHandQty,
		))
	}

	return l.writeMovement(ctx, tx, item, input, enums.StockMovementTypeSale, -input.Quantity)
}

func (l *ledger) Adjust(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.StockMovement, error) {
	if !input.Type.IsManual() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("stock: %q is not a manual movement type", input.Type))
	}
	if input.Delta == 0 {
		return nil, errors.New(errors.CodeValidation, "stock: adjustment delta must be non-zero")
	}
	switch input.Type {
	case enums.StockMovementTypePurchase:
		if input.Delta < 0 {
			return nil, errors.New(errors.CodeValidation, "stock: purchase delta must be positive")
		}
	case enums.StockMovementTypeSale, enums.StockMovementTypeLoss:
		if input.Delta > 0 {
			return nil, errors.New(errors.CodeValidation, fmt.Sprintf("stock: %s delta must be negative", input.Type))
		}
	}

	item, err := l.findItem(ctx, tx, input.VariantID, input.StoreID)
	if err != nil {
		return nil, err
	}

	res := tx.WithContext(ctx).Exec(
		`UPDATE stock_items
		 SET on_hand_qty = on_hand_qty + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND on_hand_qty + ? >= reserved_qty AND on_hand_qty + ? >= 0`,
		input.Delta, item.ID, input.Delta, input.Delta,
	)
	if res.Error != nil {
		return nil, errors.Wrap(errors.CodeInternal, res.Error, "stock: adjustment update failed")
	}
	if res.RowsAffected == 0 {
		return nil, errors.New(errors.CodeConflict, fmt.Sprintf(
			"adjustment of %d would leave variant %s below its reservations (%d on hand, %d reserved)",
			input.Delta, input.VariantID, item.OnHandQty, item.ReservedQty,
		))
	}

	movement := &models.StockMovement{
		StockItemID:    item.ID,
		VariantID:      item.VariantID,
		StoreID:        item.StoreID,
		Quantity:       input.Delta,
		Type:           input.Type,
		Reason:         input.Reason,
		OriginatorType: input.Originator.Type,
		OriginatorID:   input.Originator.ID,
	}
	if err := l.repo.WithTx(tx).CreateMovement(ctx, movement); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "stock: failed to record adjustment movement")
	}
	return movement, nil
}

func (l *ledger) findItem(ctx context.Context, tx *gorm.DB, variantID, storeID uuid.UUID) (*models.StockItem, error) {
	if tx == nil {
		return nil, errors.New(errors.CodeInternal, "stock: transaction handle is required")
	}
	item, err := l.repo.WithTx(tx).FindItemByVariantAndStore(ctx, variantID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("no stock item for variant %s in store %s", variantID, storeID))
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "stock: failed to load stock item")
	}
	return item, nil
}

func (l *ledger) writeMovement(ctx context.Context, tx *gorm.DB, item *models.StockItem, input MovementInput, movementType enums.StockMovementType, quantity int) (*models.StockMovement, error) {
	orderID := input.OrderID
	movement := &models.StockMovement{
		StockItemID:    item.ID,
		VariantID:      item.VariantID,
		StoreID:        item.StoreID,
		OrderID:        &orderID,
		Quantity:       quantity,
		Type:           movementType,
		Reason:         input.Reason,
		OriginatorType: input.Originator.Type,
		OriginatorID:   input.Originator.ID,
	}
	if err := l.repo.WithTx(tx).CreateMovement(ctx, movement); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "stock: failed to record movement")
	}
	return movement, nil
}
