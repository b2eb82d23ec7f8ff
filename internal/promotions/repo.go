package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
)

// Repository reads promotions at checkout time. Promotions are managed
// elsewhere; this package never writes them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// ListActiveForCustomer returns the email promotions of the store plus
	// the customer promotions granted to this customer, restricted to ones
	// active at now.
	ListActiveForCustomer(ctx context.Context, storeID, customerID uuid.UUID, now time.Time) ([]models.Promotion, error)
	// FindActiveCoupon returns the coupon promotion only when it is active
	// at now.
	FindActiveCoupon(ctx context.Context, storeID, promotionID uuid.UUID, now time.Time) (*models.Promotion, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a promotion repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func activeScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now)
	}
}

func (r *repository) ListActiveForCustomer(ctx context.Context, storeID, customerID uuid.UUID, now time.Time) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Scopes(activeScope(now)).
		Where("store_id = ?", storeID).
		Where(
			"type = ? OR id IN (?)",
			"email",
			r.db.Model(&models.CustomerPromotion{}).
				Select("promotion_id").
				Where("customer_id = ?", customerID),
		).
		Order("created_at ASC").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *repository) FindActiveCoupon(ctx context.Context, storeID, promotionID uuid.UUID, now time.Time) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Scopes(activeScope(now)).
		Where("store_id = ? AND id = ? AND type = ?", storeID, promotionID, "coupon").
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}
