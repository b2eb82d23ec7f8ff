package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	internalstock "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	pkgerrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/pagination"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/types"
)

type stubStockService struct {
	list   func(ctx context.Context, storeID uuid.UUID, filters internalstock.MovementFilters, params pagination.Params) ([]models.StockMovement, pagination.Meta, error)
	adjust func(ctx context.Context, input internalstock.AdjustInput) (*models.StockMovement, error)
}

func (s *stubStockService) ListMovements(ctx context.Context, storeID uuid.UUID, filters internalstock.MovementFilters, params pagination.Params) ([]models.StockMovement, pagination.Meta, error) {
	if s.list != nil {
		return s.list(ctx, storeID, filters, params)
	}
	return nil, pagination.Meta{}, nil
}

func (s *stubStockService) ManualAdjust(ctx context.Context, input internalstock.AdjustInput) (*models.StockMovement, error) {
	if s.adjust != nil {
		return s.adjust(ctx, input)
	}
	return nil, nil
}

type stubAuthorizer struct {
	err error
}

func (s *stubAuthorizer) Authorize(ctx context.Context, actorID, storeID uuid.UUID, permission string) error {
	return s.err
}

func staffRequest(method, target, body string, storeID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("storeId", storeID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.MemberRoleStaff))
	return req.WithContext(ctx)
}

func TestListMovementsParsesFilters(t *testing.T) {
	storeID := uuid.New()
	variantID := uuid.New()
	orderID := uuid.New()
	svc := &stubStockService{
		list: func(ctx context.Context, gotStore uuid.UUID, filters internalstock.MovementFilters, params pagination.Params) ([]models.StockMovement, pagination.Meta, error) {
			if gotStore != storeID {
				t.Fatalf("unexpected store %s", gotStore)
			}
			if filters.VariantID == nil || *filters.VariantID != variantID {
				t.Fatalf("variant filter not parsed")
			}
			if filters.OrderID == nil || *filters.OrderID != orderID {
				t.Fatalf("order filter not parsed")
			}
			if params.Page != 2 || params.Limit != 10 {
				t.Fatalf("unexpected params %+v", params)
			}
			return []models.StockMovement{{VariantID: variantID, Quantity: -3}}, pagination.NewMeta(params, 11), nil
		},
	}

	target := "/api/v1/stores/" + storeID.String() + "/stock-movements?page=2&limit=10&variantId=" + variantID.String() + "&orderId=" + orderID.String()
	req := staffRequest(http.MethodGet, target, "", storeID)

	resp := httptest.NewRecorder()
	ListMovements(svc, &stubAuthorizer{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body types.PagedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Meta.Total != 11 {
		t.Fatalf("unexpected total %d", body.Meta.Total)
	}
}

func TestListMovementsRejectsBadVariantFilter(t *testing.T) {
	storeID := uuid.New()
	req := staffRequest(http.MethodGet, "/anything?variantId=nope", "", storeID)

	resp := httptest.NewRecorder()
	ListMovements(&stubStockService{}, &stubAuthorizer{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListMovementsDenied(t *testing.T) {
	storeID := uuid.New()
	auth := &stubAuthorizer{err: pkgerrors.New(pkgerrors.CodeForbidden, "missing permission")}
	req := staffRequest(http.MethodGet, "/anything", "", storeID)

	resp := httptest.NewRecorder()
	ListMovements(&stubStockService{}, auth, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAdjustCreatesMovement(t *testing.T) {
	storeID := uuid.New()
	variantID := uuid.New()
	svc := &stubStockService{
		adjust: func(ctx context.Context, input internalstock.AdjustInput) (*models.StockMovement, error) {
			if input.VariantID != variantID || input.StoreID != storeID {
				t.Fatalf("unexpected identifiers %s %s", input.VariantID, input.StoreID)
			}
			if input.Delta != -4 {
				t.Fatalf("unexpected delta %d", input.Delta)
			}
			if input.Type != enums.StockMovementTypeLoss {
				t.Fatalf("unexpected type %s", input.Type)
			}
			return &models.StockMovement{VariantID: variantID, StoreID: storeID, Quantity: -4, Type: input.Type}, nil
		},
	}

	body := `{"variant_id":"` + variantID.String() + `","quantity":-4,"type":"loss","reason":"breakage"}`
	req := staffRequest(http.MethodPost, "/anything", body, storeID)

	resp := httptest.NewRecorder()
	Adjust(svc, &stubAuthorizer{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdjustRejectsUnknownType(t *testing.T) {
	storeID := uuid.New()
	body := `{"variant_id":"` + uuid.NewString() + `","quantity":1,"type":"teleport"}`
	req := staffRequest(http.MethodPost, "/anything", body, storeID)

	resp := httptest.NewRecorder()
	Adjust(&stubStockService{}, &stubAuthorizer{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
