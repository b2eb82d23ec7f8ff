package checkout

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/promotions"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	apperrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []uuid.UUID
	done chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{done: make(chan struct{}, 8)}
}

func (m *recordingMailer) SendOrderConfirmation(_ context.Context, order *models.Order) {
	m.mu.Lock()
	m.sent = append(m.sent, order.ID)
	m.mu.Unlock()
	m.done <- struct{}{}
}

func (m *recordingMailer) waitForSend(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a confirmation send")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type harness struct {
	client     *db.Client
	service    Service
	mailer     *recordingMailer
	storeID    uuid.UUID
	customerID uuid.UUID
	now        time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Promotion{},
		&models.CustomerPromotion{},
		&models.StockItem{},
		&models.StockMovement{},
	))
	client := db.NewFromConn(conn)

	ledger, err := stock.NewLedger(stock.NewRepository(client.DB()), nil)
	require.NoError(t, err)

	mailer := newRecordingMailer()
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewService(Deps{
		Tx:         client,
		Orders:     orders.NewRepository(client.DB()),
		Promotions: promotions.NewRepository(client.DB()),
		Ledger:     ledger,
		Mailer:     mailer,
		Logger:     logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard}),
		Config:     config.CheckoutConfig{TxTimeout: 10 * time.Second},
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	return &harness{
		client:     client,
		service:    svc,
		mailer:     mailer,
		storeID:    uuid.New(),
		customerID: uuid.New(),
		now:        now,
	}
}

type cartLine struct {
	Qty    int
	Price  string
	OnHand int
}

func (h *harness) seedCart(t *testing.T, lines ...cartLine) *models.Order {
	t.Helper()
	cart := &models.Order{
		StoreID:    h.storeID,
		CustomerID: &h.customerID,
		Status:     enums.OrderStatusCart,
	}
	for _, line := range lines {
		variantID := uuid.New()
		price, err := decimal.NewFromString(line.Price)
		require.NoError(t, err)
		cart.Items = append(cart.Items, models.OrderItem{
			VariantID: variantID,
			Quantity:  line.Qty,
			Price:     price,
		})
		require.NoError(t, h.client.DB().Create(&models.StockItem{
			VariantID: variantID,
			StoreID:   h.storeID,
			OnHandQty: line.OnHand,
		}).Error)
	}
	require.NoError(t, h.client.DB().Create(cart).Error)
	return cart
}

func (h *harness) checkoutInput() Input {
	return Input{
		StoreID:       h.storeID,
		CustomerID:    h.customerID,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		Shipping: ShippingDetails{
			Phone:      "+35312345678",
			Address:    "12 Quay Street",
			City:       "Galway",
			PostalCode: "H91 XY00",
			Country:    "IE",
		},
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	h := newHarness(t)
	cart := h.seedCart(t,
		cartLine{Qty: 2, Price: "25.00", OnHand: 5},
		cartLine{Qty: 1, Price: "50.00", OnHand: 1},
	)

	placed, err := h.service.Checkout(context.Background(), h.checkoutInput())
	require.NoError(t, err)
	assert.Equal(t, cart.ID, placed.ID)
	assert.Equal(t, enums.OrderStatusProcessing, placed.Status)
	assert.False(t, placed.IsPaid, "cash on delivery is paid on receipt")
	assert.True(t, placed.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, placed.FinalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "Galway", placed.City)

	// Reservations landed for each line.
	var items []models.StockItem
	require.NoError(t, h.client.DB().Where("store_id = ?", h.storeID).Find(&items).Error)
	reservedTotal := 0
	for _, item := range items {
		reservedTotal += item.ReservedQty
	}
	assert.Equal(t, 3, reservedTotal)

	var moves []models.StockMovement
	require.NoError(t, h.client.DB().Where("order_id = ?", cart.ID).Find(&moves).Error)
	require.Len(t, moves, 2)
	for _, move := range moves {
		assert.Equal(t, enums.StockMovementTypeReserved, move.Type)
		assert.Negative(t, move.Quantity)
	}

	// History row for the transition.
	var history []models.OrderStatusHistory
	require.NoError(t, h.client.DB().Where("order_id = ?", cart.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, enums.OrderStatusProcessing, history[0].Status)
	assert.Equal(t, enums.OriginatorTypeCustomer, history[0].OriginatorType)

	// A fresh empty cart replaced the old one.
	fresh, err := h.service.GetOrCreateCart(context.Background(), h.storeID, h.customerID)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, fresh.ID)
	assert.Empty(t, fresh.Items)

	assert.Equal(t, cart.ID, h.mailer.waitForSend(t))
}

func TestCheckoutPrepaidMarksPaid(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t, cartLine{Qty: 1, Price: "10.00", OnHand: 1})

	input := h.checkoutInput()
	input.PaymentMethod = enums.PaymentMethodCard
	placed, err := h.service.Checkout(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, placed.IsPaid)
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t) // cart with no items

	_, err := h.service.Checkout(context.Background(), h.checkoutInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestCheckoutNoCart(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Checkout(context.Background(), h.checkoutInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	h := newHarness(t)
	cart := h.seedCart(t,
		cartLine{Qty: 1, Price: "10.00", OnHand: 5},
		cartLine{Qty: 3, Price: "20.00", OnHand: 2},
	)

	_, err := h.service.Checkout(context.Background(), h.checkoutInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())

	// Everything rolled back: cart still a cart, no reservations, no rows.
	var reloaded models.Order
	require.NoError(t, h.client.DB().First(&reloaded, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.OrderStatusCart, reloaded.Status)

	var items []models.StockItem
	require.NoError(t, h.client.DB().Where("store_id = ?", h.storeID).Find(&items).Error)
	for _, item := range items {
		assert.Zero(t, item.ReservedQty)
	}

	var count int64
	require.NoError(t, h.client.DB().Model(&models.StockMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutAppliesPromotions(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t, cartLine{Qty: 1, Price: "100.00", OnHand: 1})

	past := h.now.AddDate(0, -1, 0)
	future := h.now.AddDate(0, 1, 0)
	email := &models.Promotion{
		StoreID:   h.storeID,
		Type:      enums.PromotionTypeEmail,
		Discount:  decimal.NewFromInt(10),
		IsActive:  true,
		StartDate: past,
		EndDate:   future,
	}
	require.NoError(t, h.client.DB().Create(email).Error)
	coupon := &models.Promotion{
		StoreID:   h.storeID,
		Type:      enums.PromotionTypeCoupon,
		Discount:  decimal.RequireFromString("5.00"),
		IsFixed:   true,
		IsActive:  true,
		StartDate: past,
		EndDate:   future,
	}
	require.NoError(t, h.client.DB().Create(coupon).Error)

	input := h.checkoutInput()
	input.CouponID = &coupon.ID
	placed, err := h.service.Checkout(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, placed.EmailDiscount.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, placed.CouponDiscount.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, placed.FinalAmount.Equal(decimal.RequireFromString("85.00")), "final: %s", placed.FinalAmount)

	var attached []models.Promotion
	require.NoError(t, h.client.DB().Model(placed).Association("Promotions").Find(&attached))
	assert.Len(t, attached, 2)
}

func TestCheckoutExpiredCoupon(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t, cartLine{Qty: 1, Price: "100.00", OnHand: 1})

	past := h.now.AddDate(0, -2, 0)
	expired := &models.Promotion{
		StoreID:   h.storeID,
		Type:      enums.PromotionTypeCoupon,
		Discount:  decimal.NewFromInt(10),
		IsActive:  true,
		StartDate: past,
		EndDate:   past.AddDate(0, 1, 0),
	}
	require.NoError(t, h.client.DB().Create(expired).Error)

	input := h.checkoutInput()
	input.CouponID = &expired.ID
	_, err := h.service.Checkout(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestCheckoutTwiceConflicts(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t, cartLine{Qty: 1, Price: "10.00", OnHand: 5})

	_, err := h.service.Checkout(context.Background(), h.checkoutInput())
	require.NoError(t, err)

	// The replacement cart is empty, so a second attempt fails validation
	// rather than double-reserving.
	_, err = h.service.Checkout(context.Background(), h.checkoutInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestGetOrCreateCart(t *testing.T) {
	h := newHarness(t)

	first, err := h.service.GetOrCreateCart(context.Background(), h.storeID, h.customerID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCart, first.Status)

	second, err := h.service.GetOrCreateCart(context.Background(), h.storeID, h.customerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCheckoutCombinesDirectDiscountPercents(t *testing.T) {
	h := newHarness(t)
	h.seedCart(t, cartLine{Qty: 1, Price: "100.00", OnHand: 1})

	past := h.now.AddDate(0, -1, 0)
	future := h.now.AddDate(0, 1, 0)
	require.NoError(t, h.client.DB().Create(&models.Promotion{
		StoreID:   h.storeID,
		Type:      enums.PromotionTypeEmail,
		Discount:  decimal.NewFromInt(10),
		IsActive:  true,
		StartDate: past,
		EndDate:   future,
	}).Error)

	input := h.checkoutInput()
	input.Discounts = promotions.DirectPercents{
		Email:  decimal.NewFromInt(10),
		Coupon: decimal.NewFromInt(5),
	}
	placed, err := h.service.Checkout(context.Background(), input)
	require.NoError(t, err)

	// 10% direct + 10% promotion in the email bucket, 5% direct coupon.
	assert.True(t, placed.EmailDiscount.Equal(decimal.RequireFromString("20.00")), "email: %s", placed.EmailDiscount)
	assert.True(t, placed.CouponDiscount.Equal(decimal.RequireFromString("5.00")), "coupon: %s", placed.CouponDiscount)
	assert.True(t, placed.FinalAmount.Equal(decimal.RequireFromString("75.00")), "final: %s", placed.FinalAmount)
}
