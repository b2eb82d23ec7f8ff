package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
)

// MovementFilters narrow the audit query. Both filters combine with AND when
// set. OrderID matches the movement's own order_id column.
type MovementFilters struct {
	VariantID *uuid.UUID
	OrderID   *uuid.UUID
}

// Repository manages persistence for stock items and their movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItemByVariantAndStore(ctx context.Context, variantID, storeID uuid.UUID) (*models.StockItem, error)
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, storeID uuid.UUID, filters MovementFilters, params pagination.Params) ([]models.StockMovement, int64, error)
	ListMovementsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItemByVariantAndStore(ctx context.Context, variantID, storeID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND store_id = ?", variantID, storeID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, storeID uuid.UUID, filters MovementFilters, params pagination.Params) ([]models.StockMovement, int64, error) {
	norm := params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("store_id = ?", storeID)
	if filters.VariantID != nil {
		query = query.Where("variant_id = ?", *filters.VariantID)
	}
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []models.StockMovement
	err := query.
		Order("created_at DESC").
		Offset(norm.Offset()).
		Limit(norm.Limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

func (r *repository) ListMovementsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
