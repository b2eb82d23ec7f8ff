package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
)

// Repository manages persistence for orders, their line items and the
// status-history audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDAndStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.Order, error)
	FindCart(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	// UpdateStatusCAS advances the persisted status only when it still equals
	// from. It reports whether the row was claimed.
	UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	// ListStatusHistory returns the audit rows newest first.
	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	ReplacePromotions(ctx context.Context, order *models.Order, promotions []models.Promotion) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByIDAndStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Promotions").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ? AND store_id = ?", orderID, storeID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCart(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND customer_id = ? AND status = ?", storeID, customerID, enums.OrderStatusCart).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *repository) UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, orderID, from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListForCustomer(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	norm := params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("store_id = ? AND customer_id = ? AND status <> ?", storeID, customerID, enums.OrderStatusCart)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(norm.Offset()).
		Limit(norm.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) ReplacePromotions(ctx context.Context, order *models.Order, promotions []models.Promotion) error {
	return r.db.WithContext(ctx).Model(order).Association("Promotions").Replace(promotions)
}
