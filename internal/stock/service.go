package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the stock operations reachable from the admin API: the
// paginated movement audit and manual adjustments.
type Service interface {
	ListMovements(ctx context.Context, storeID uuid.UUID, filters MovementFilters, params pagination.Params) ([]models.StockMovement, pagination.Meta, error)
	ManualAdjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error)
}

type service struct {
	tx     txRunner
	repo   Repository
	ledger Ledger
}

// NewService builds the stock service.
func NewService(tx txRunner, repo Repository, ledger Ledger) (Service, error) {
	if tx == nil {
		return nil, errors.New(errors.CodeInternal, "stock: transaction runner is required")
	}
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "stock: repository is required")
	}
	if ledger == nil {
		return nil, errors.New(errors.CodeInternal, "stock: ledger is required")
	}
	return &service{tx: tx, repo: repo, ledger: ledger}, nil
}

func (s *service) ListMovements(ctx context.Context, storeID uuid.UUID, filters MovementFilters, params pagination.Params) ([]models.StockMovement, pagination.Meta, error) {
	norm := params.Normalize()
	movements, total, err := s.repo.ListMovements(ctx, storeID, filters, norm)
	if err != nil {
		return nil, pagination.Meta{}, errors.Wrap(errors.CodeInternal, err, "stock: failed to list movements")
	}
	return movements, pagination.NewMeta(norm, total), nil
}

func (s *service) ManualAdjust(ctx context.Context, input AdjustInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		movement, err = s.ledger.Adjust(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}
