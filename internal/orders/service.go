package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/metrics"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TransitionInput describes a requested status change for an existing order.
type TransitionInput struct {
	OrderID    uuid.UUID
	StoreID    uuid.UUID
	Target     enums.OrderStatus
	Reason     string
	Originator stock.Originator
}

// Service drives the order lifecycle. Every transition, its stock side
// effects and its history row commit or roll back together.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	ListStatusHistory(ctx context.Context, storeID, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	ListCustomerOrders(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) ([]models.Order, pagination.Meta, error)
	GetCustomerOrder(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*models.Order, error)
}

type Deps struct {
	Tx      txRunner
	Repo    Repository
	Stock   stock.Repository
	Ledger  stock.Ledger
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
}

type service struct {
	tx      txRunner
	repo    Repository
	stock   stock.Repository
	ledger  stock.Ledger
	log     *logger.Logger
	metrics *metrics.OrderMetrics
}

// NewService builds the order lifecycle service. Metrics may be nil.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, errors.New(errors.CodeInternal, "orders: transaction runner is required")
	}
	if deps.Repo == nil {
		return nil, errors.New(errors.CodeInternal, "orders: repository is required")
	}
	if deps.Stock == nil {
		return nil, errors.New(errors.CodeInternal, "orders: stock repository is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New(errors.CodeInternal, "orders: stock ledger is required")
	}
	if deps.Logger == nil {
		return nil, errors.New(errors.CodeInternal, "orders: logger is required")
	}
	return &service{
		tx:      deps.Tx,
		repo:    deps.Repo,
		stock:   deps.Stock,
		ledger:  deps.Ledger,
		log:     deps.Logger,
		metrics: deps.Metrics,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	start := time.Now()
	if !input.Target.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("orders: invalid target status %q", input.Target))
	}
	if input.Target == enums.OrderStatusCart {
		return nil, errors.New(errors.CodeValidation, "orders: an order cannot return to cart")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDAndStore(ctx, input.OrderID, input.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "orders: failed to load order")
		}

		if order.Status == enums.OrderStatusCart {
			return errors.New(errors.CodeStateConflict, "cart orders advance through checkout, not status transitions")
		}
		if !CanTransition(order.Status, input.Target) {
			return errors.New(errors.CodeStateConflict, fmt.Sprintf(
				"cannot transition order from %s to %s", order.Status, input.Target,
			)).WithDetails(map[string]any{
				"currentStatus": order.Status.String(),
				"allowed":       NextStatuses(order.Status),
			})
		}

		// Claim the transition first so a concurrent request on the same
		// order observes a lost compare-and-set instead of doubled side
		// effects.
		claimed, err := repo.UpdateStatusCAS(ctx, order.ID, order.Status, input.Target)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "orders: failed to update status")
		}
		if !claimed {
			return errors.New(errors.CodeStateConflict, "order was modified concurrently, retry with its current status")
		}

		if err := s.applyStockEffects(ctx, tx, order, input); err != nil {
			return err
		}

		entry := &models.OrderStatusHistory{
			OrderID:        order.ID,
			Status:         input.Target,
			Reason:         input.Reason,
			OriginatorType: input.Originator.Type,
			OriginatorID:   input.Originator.ID,
		}
		if err := repo.AppendStatusHistory(ctx, entry); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "orders: failed to append status history")
		}

		order.Status = input.Target
		order.StatusHistory = append([]models.OrderStatusHistory{*entry}, order.StatusHistory...)

		movements, err := s.stock.WithTx(tx).ListMovementsByOrder(ctx, order.ID)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "orders: failed to load stock movements")
		}
		order.Movements = movements

		updated = order
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("transition")
		return nil, err
	}

	s.metrics.IncSuccess("transition")
	s.metrics.IncTransition(input.Target.String())
	s.metrics.ObserveDuration("transition", time.Since(start))

	lctx := s.log.WithFields(ctx, map[string]any{
		"order_id": updated.ID.String(),
		"status":   updated.Status.String(),
	})
	s.log.Info(lctx, "order status transitioned")
	return updated, nil
}

// applyStockEffects runs the per-target ledger operations using the order's
// line items. Reservations survive shipment, so cancellation releases them
// whether the order was still processing or already shipped.
func (s *service) applyStockEffects(ctx context.Context, tx *gorm.DB, order *models.Order, input TransitionInput) error {
	var op func(context.Context, *gorm.DB, stock.MovementInput) (*models.StockMovement, error)
	var reason string

	switch input.Target {
	case enums.OrderStatusShipped:
		op = s.ledger.ConsumeOnShip
		reason = "order shipped"
	case enums.OrderStatusCompleted:
		op = s.ledger.Finalize
		reason = "order completed"
	case enums.OrderStatusCancelled:
		op = s.ledger.Release
		reason = "order cancelled"
	default:
		return nil
	}

	for _, item := range order.Items {
		_, err := op(ctx, tx, stock.MovementInput{
			VariantID:  item.VariantID,
			StoreID:    order.StoreID,
			Quantity:   item.Quantity,
			OrderID:    order.ID,
			Reason:     reason,
			Originator: input.Originator,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetOrder loads one order with its items, status history and stock
// movements.
func (s *service) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndStore(ctx, orderID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "orders: failed to load order")
	}
	movements, err := s.stock.ListMovementsByOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "orders: failed to load stock movements")
	}
	order.Movements = movements
	return order, nil
}

func (s *service) ListStatusHistory(ctx context.Context, storeID, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	if _, err := s.GetOrder(ctx, storeID, orderID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListStatusHistory(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "orders: failed to list status history")
	}
	return entries, nil
}

// GetCustomerOrder fetches one placed order on behalf of its customer. Carts
// and other customers' orders come back as not found rather than forbidden so
// the response does not leak order existence across accounts.
func (s *service) GetCustomerOrder(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCart || order.CustomerID == nil || *order.CustomerID != customerID {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	norm := params.Normalize()
	rows, total, err := s.repo.ListForCustomer(ctx, storeID, customerID, norm)
	if err != nil {
		return nil, pagination.Meta{}, errors.Wrap(errors.CodeInternal, err, "orders: failed to list customer orders")
	}
	return rows, pagination.NewMeta(norm, total), nil
}
