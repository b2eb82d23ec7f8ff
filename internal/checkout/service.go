package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/notify"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/promotions"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/metrics"
)

// ShippingDetails is the delivery address captured at checkout.
type ShippingDetails struct {
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Input describes one checkout attempt for a customer's current cart.
// Discounts carries the caller's percentage inputs; they combine with the
// promotions resolved server-side.
type Input struct {
	StoreID       uuid.UUID
	CustomerID    uuid.UUID
	PaymentMethod enums.PaymentMethod
	Shipping      ShippingDetails
	CouponID      *uuid.UUID
	Discounts     promotions.DirectPercents
}

// Service converts carts into processing orders. The conversion reserves
// stock, prices the order and opens a fresh cart, all in one bounded
// transaction.
type Service interface {
	Checkout(ctx context.Context, input Input) (*models.Order, error)
	GetOrCreateCart(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error)
}

type Deps struct {
	Tx         db.TxRunner
	Orders     orders.Repository
	Promotions promotions.Repository
	Ledger     stock.Ledger
	Mailer     notify.Mailer
	Logger     *logger.Logger
	Metrics    *metrics.OrderMetrics
	Config     config.CheckoutConfig
	Now        func() time.Time
}

type service struct {
	tx      db.TxRunner
	orders  orders.Repository
	promos  promotions.Repository
	ledger  stock.Ledger
	mailer  notify.Mailer
	log     *logger.Logger
	metrics *metrics.OrderMetrics
	timeout time.Duration
	now     func() time.Time
}

// NewService builds the checkout orchestrator. Metrics may be nil; Now
// defaults to time.Now.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: transaction runner is required")
	}
	if deps.Orders == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: order repository is required")
	}
	if deps.Promotions == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: promotion repository is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: stock ledger is required")
	}
	if deps.Mailer == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: mailer is required")
	}
	if deps.Logger == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: logger is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:      deps.Tx,
		orders:  deps.Orders,
		promos:  deps.Promotions,
		ledger:  deps.Ledger,
		mailer:  deps.Mailer,
		log:     deps.Logger,
		metrics: deps.Metrics,
		timeout: deps.Config.TxTimeout,
		now:     now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*models.Order, error) {
	start := time.Now()
	if !input.PaymentMethod.IsValid() {
		return nil, errors.New(errors.CodeValidation, "checkout: invalid payment method")
	}

	var placed *models.Order
	err := s.tx.WithTxTimeout(ctx, s.timeout, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		promoRepo := s.promos.WithTx(tx)

		cart, err := orderRepo.FindCart(ctx, input.StoreID, input.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "no cart for this customer")
			}
			return errors.Wrap(errors.CodeInternal, err, "checkout: failed to load cart")
		}
		if len(cart.Items) == 0 {
			return errors.New(errors.CodeValidation, "cart is empty")
		}

		// Claim the cart before any side effect so two concurrent checkouts
		// cannot both reserve its items.
		claimed, err := orderRepo.UpdateStatusCAS(ctx, cart.ID, enums.OrderStatusCart, enums.OrderStatusProcessing)
		if err != nil {
			return errors.Wrap(errors.CodeInternal, err, "checkout: failed to claim cart")
		}
		if !claimed {
			return errors.New(errors.CodeStateConflict, "cart was already checked out")
		}

		total := decimal.Zero
		for _, item := range cart.Items {
			if _, err := s.ledger.Reserve(ctx, tx, stock.MovementInput{
				VariantID: item.VariantID,
				StoreID:   cart.StoreID,
				Quantity:  item.Quantity,
				OrderID:   cart.ID,
				Reason:    "checkout",
				Originator: stock.Originator{
					Type: enums.OriginatorTypeCustomer,
					ID:   input.CustomerID,
				},
			}); err != nil {
				return err
			}
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		promos, err := s.collectPromotions(ctx, promoRepo, input)
		if err != nil {
			return err
		}
		breakdown := promotions.Compute(total, promos, input.Discounts)

		cart.Status = enums.OrderStatusProcessing
		cart.PaymentMethod = &input.PaymentMethod
		cart.IsPaid = input.PaymentMethod.IsPrepaid()
		cart.Phone = input.Shipping.Phone
		cart.Address = input.Shipping.Address
		cart.City = input.Shipping.City
		cart.State = input.Shipping.State
		cart.PostalCode = input.Shipping.PostalCode
		cart.Country = input.Shipping.Country
		cart.TotalAmount = total
		cart.EmailDiscount = breakdown.Email
		cart.CustomerDiscount = breakdown.Customer
		cart.CouponDiscount = breakdown.Coupon
		cart.FinalAmount = breakdown.Final
		if err := orderRepo.Save(ctx, cart); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "checkout: failed to save order")
		}
		if len(promos) > 0 {
			if err := orderRepo.ReplacePromotions(ctx, cart, promos); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "checkout: failed to attach promotions")
			}
		}

		if err := orderRepo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:        cart.ID,
			Status:         enums.OrderStatusProcessing,
			Reason:         "checkout",
			OriginatorType: enums.OriginatorTypeCustomer,
			OriginatorID:   input.CustomerID,
		}); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "checkout: failed to append status history")
		}

		customerID := input.CustomerID
		if err := orderRepo.Create(ctx, &models.Order{
			StoreID:    input.StoreID,
			CustomerID: &customerID,
			Status:     enums.OrderStatusCart,
		}); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "checkout: failed to open a new cart")
		}

		placed = cart
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("checkout")
		return nil, err
	}

	s.metrics.IncSuccess("checkout")
	s.metrics.IncTransition(enums.OrderStatusProcessing.String())
	s.metrics.ObserveDuration("checkout", time.Since(start))

	lctx := s.log.WithFields(ctx, map[string]any{
		"order_id":     placed.ID.String(),
		"store_id":     placed.StoreID.String(),
		"final_amount": placed.FinalAmount.String(),
	})
	s.log.Info(lctx, "checkout completed")

	// Confirmation is best effort and must not hold up the response.
	go s.mailer.SendOrderConfirmation(context.WithoutCancel(ctx), placed)

	return placed, nil
}

func (s *service) collectPromotions(ctx context.Context, repo promotions.Repository, input Input) ([]models.Promotion, error) {
	now := s.now()
	promos, err := repo.ListActiveForCustomer(ctx, input.StoreID, input.CustomerID, now)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "checkout: failed to load promotions")
	}
	if input.CouponID != nil {
		coupon, err := repo.FindActiveCoupon(ctx, input.StoreID, *input.CouponID, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New(errors.CodeValidation, "coupon is not active")
			}
			return nil, errors.Wrap(errors.CodeInternal, err, "checkout: failed to load coupon")
		}
		promos = append(promos, *coupon)
	}
	return promos, nil
}

func (s *service) GetOrCreateCart(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error) {
	cart, err := s.orders.FindCart(ctx, storeID, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeInternal, err, "checkout: failed to load cart")
	}

	fresh := &models.Order{
		StoreID:    storeID,
		CustomerID: &customerID,
		Status:     enums.OrderStatusCart,
	}
	if err := s.orders.Create(ctx, fresh); err != nil {
		// A concurrent request may have opened the cart first.
		if db.IsUniqueViolation(err, "orders_cart_singleton") {
			return s.orders.FindCart(ctx, storeID, customerID)
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "checkout: failed to create cart")
	}
	return fresh, nil
}
