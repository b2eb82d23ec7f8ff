package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	internalcheckout "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/checkout"
	internalorders "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/types"
)

type stubCheckoutService struct {
	checkout func(ctx context.Context, input internalcheckout.Input) (*models.Order, error)
	cart     func(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error)
}

func (s *stubCheckoutService) Checkout(ctx context.Context, input internalcheckout.Input) (*models.Order, error) {
	if s.checkout != nil {
		return s.checkout(ctx, input)
	}
	return nil, nil
}

func (s *stubCheckoutService) GetOrCreateCart(ctx context.Context, storeID, customerID uuid.UUID) (*models.Order, error) {
	if s.cart != nil {
		return s.cart(ctx, storeID, customerID)
	}
	return nil, nil
}

func customerRequest(method, target, body string, storeID, customerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("storeId", storeID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, customerID.String())
	ctx = middleware.WithRole(ctx, string(enums.MemberRoleCustomer))
	ctx = middleware.WithStoreID(ctx, storeID.String())
	return req.WithContext(ctx)
}

const validCheckoutBody = `{
	"payment_method": "cash_on_delivery",
	"phone": "+1 555 0100",
	"address": "1 Main St",
	"city": "Springfield",
	"postal_code": "12345",
	"country": "US"
}`

func TestCheckoutPlacesOrder(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()
	svc := &stubCheckoutService{
		checkout: func(ctx context.Context, input internalcheckout.Input) (*models.Order, error) {
			if input.StoreID != storeID || input.CustomerID != customerID {
				t.Fatalf("unexpected identifiers %s %s", input.StoreID, input.CustomerID)
			}
			if input.PaymentMethod != enums.PaymentMethodCashOnDelivery {
				t.Fatalf("unexpected payment method %s", input.PaymentMethod)
			}
			if input.Shipping.City != "Springfield" {
				t.Fatalf("unexpected city %q", input.Shipping.City)
			}
			if input.CouponID != nil {
				t.Fatalf("coupon should be absent")
			}
			return &models.Order{ID: uuid.New(), StoreID: storeID, Status: enums.OrderStatusProcessing}, nil
		},
	}

	req := customerRequest(http.MethodPost, "/api/v1/storefront/"+storeID.String()+"/checkout", validCheckoutBody, storeID, customerID)
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.(map[string]any)["status"] != "processing" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestCheckoutForwardsCoupon(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()
	couponID := uuid.New()
	svc := &stubCheckoutService{
		checkout: func(ctx context.Context, input internalcheckout.Input) (*models.Order, error) {
			if input.CouponID == nil || *input.CouponID != couponID {
				t.Fatalf("coupon not forwarded")
			}
			return &models.Order{ID: uuid.New(), Status: enums.OrderStatusProcessing}, nil
		},
	}

	body := strings.TrimSuffix(validCheckoutBody, "\n}") + `,
	"coupon_id": "` + couponID.String() + `"
}`
	req := customerRequest(http.MethodPost, "/anything", body, storeID, customerID)
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCheckoutRejectsIncompleteShipping(t *testing.T) {
	storeID := uuid.New()
	req := customerRequest(http.MethodPost, "/anything", `{"payment_method":"card"}`, storeID, uuid.New())

	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutRejectsForeignStoreToken(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/anything", strings.NewReader(validCheckoutBody))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("storeId", storeID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, customerID.String())
	ctx = middleware.WithRole(ctx, string(enums.MemberRoleCustomer))
	ctx = middleware.WithStoreID(ctx, uuid.NewString()) // token minted for another storefront
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCheckoutRejectsStaffToken(t *testing.T) {
	storeID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/anything", strings.NewReader(validCheckoutBody))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("storeId", storeID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.MemberRoleAdmin))
	ctx = middleware.WithStoreID(ctx, storeID.String())
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

type stubOrderReader struct {
	get func(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*models.Order, error)
}

func (s *stubOrderReader) Transition(ctx context.Context, input internalorders.TransitionInput) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrderReader) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (s *stubOrderReader) ListStatusHistory(ctx context.Context, storeID, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	return nil, nil
}

func (s *stubOrderReader) ListCustomerOrders(ctx context.Context, storeID, customerID uuid.UUID, params pagination.Params) ([]models.Order, pagination.Meta, error) {
	return nil, pagination.NewMeta(params, 0), nil
}

func (s *stubOrderReader) GetCustomerOrder(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, storeID, customerID, orderID)
	}
	return nil, nil
}

func TestOrdersFetchesSingleOrderByQuery(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrderReader{
		get: func(ctx context.Context, gotStore, gotCustomer, gotOrder uuid.UUID) (*models.Order, error) {
			if gotStore != storeID || gotCustomer != customerID || gotOrder != orderID {
				t.Fatalf("unexpected identifiers %s %s %s", gotStore, gotCustomer, gotOrder)
			}
			return &models.Order{ID: orderID, StoreID: storeID, Status: enums.OrderStatusShipped}, nil
		},
	}

	req := customerRequest(http.MethodGet, "/anything?orderId="+orderID.String(), "", storeID, customerID)
	resp := httptest.NewRecorder()
	Orders(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.(map[string]any)["status"] != "shipped" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestCartReturnsCurrentCart(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()
	svc := &stubCheckoutService{
		cart: func(ctx context.Context, gotStore, gotCustomer uuid.UUID) (*models.Order, error) {
			if gotStore != storeID || gotCustomer != customerID {
				t.Fatalf("unexpected identifiers %s %s", gotStore, gotCustomer)
			}
			return &models.Order{ID: uuid.New(), StoreID: storeID, Status: enums.OrderStatusCart}, nil
		},
	}

	req := customerRequest(http.MethodGet, "/anything", "", storeID, customerID)
	resp := httptest.NewRecorder()
	Cart(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.(map[string]any)["status"] != "cart" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestCheckoutForwardsDiscountPercents(t *testing.T) {
	storeID := uuid.New()
	customerID := uuid.New()
	svc := &stubCheckoutService{
		checkout: func(ctx context.Context, input internalcheckout.Input) (*models.Order, error) {
			if !input.Discounts.Email.Equal(decimal.RequireFromString("10")) {
				t.Fatalf("email percent not forwarded: %s", input.Discounts.Email)
			}
			if !input.Discounts.Customer.Equal(decimal.RequireFromString("2.5")) {
				t.Fatalf("customer percent not forwarded: %s", input.Discounts.Customer)
			}
			if !input.Discounts.Coupon.IsZero() {
				t.Fatalf("coupon percent should be zero: %s", input.Discounts.Coupon)
			}
			return &models.Order{ID: uuid.New(), Status: enums.OrderStatusProcessing}, nil
		},
	}

	body := strings.TrimSuffix(validCheckoutBody, "\n}") + `,
	"email_discount": 10,
	"customer_discount": 2.5
}`
	req := customerRequest(http.MethodPost, "/anything", body, storeID, customerID)
	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCheckoutRejectsDiscountOverHundred(t *testing.T) {
	storeID := uuid.New()
	body := strings.TrimSuffix(validCheckoutBody, "\n}") + `,
	"email_discount": 120
}`
	req := customerRequest(http.MethodPost, "/anything", body, storeID, uuid.New())

	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}
