package storefront

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/responses"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/validators"
	internalcheckout "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/checkout"
	internalorders "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/promotions"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	pkgerrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

type checkoutRequest struct {
	PaymentMethod string  `json:"payment_method" validate:"required"`
	Phone         string  `json:"phone" validate:"required,max=32"`
	Address       string  `json:"address" validate:"required,max=500"`
	City          string  `json:"city" validate:"required,max=120"`
	State         string  `json:"state" validate:"omitempty,max=120"`
	PostalCode    string  `json:"postal_code" validate:"required,max=20"`
	Country       string  `json:"country" validate:"required,max=60"`
	CouponID      *string `json:"coupon_id" validate:"omitempty,uuid"`

	// Percentage discounts the storefront already granted the customer.
	// They combine additively with the promotions resolved server-side.
	EmailDiscount    float64 `json:"email_discount" validate:"omitempty,gte=0,lte=100"`
	CustomerDiscount float64 `json:"customer_discount" validate:"omitempty,gte=0,lte=100"`
	CouponDiscount   float64 `json:"coupon_discount" validate:"omitempty,gte=0,lte=100"`
}

// Checkout converts the customer's cart into a processing order.
func Checkout(svc internalcheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, customerID, err := requireCustomer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := internalcheckout.Input{
			StoreID:       storeID,
			CustomerID:    customerID,
			PaymentMethod: method,
			Shipping: internalcheckout.ShippingDetails{
				Phone:      strings.TrimSpace(req.Phone),
				Address:    strings.TrimSpace(req.Address),
				City:       strings.TrimSpace(req.City),
				State:      strings.TrimSpace(req.State),
				PostalCode: strings.TrimSpace(req.PostalCode),
				Country:    strings.TrimSpace(req.Country),
			},
			Discounts: promotions.DirectPercents{
				Email:    decimal.NewFromFloat(req.EmailDiscount).Round(2),
				Customer: decimal.NewFromFloat(req.CustomerDiscount).Round(2),
				Coupon:   decimal.NewFromFloat(req.CouponDiscount).Round(2),
			},
		}
		if req.CouponID != nil {
			couponID, err := uuid.Parse(*req.CouponID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id"))
				return
			}
			input.CouponID = &couponID
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.ToDTO(order))
	}
}

// Cart returns the customer's current cart, opening an empty one on first use.
func Cart(svc internalcheckout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, customerID, err := requireCustomer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetOrCreateCart(r.Context(), storeID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToDTO(cart))
	}
}

// Orders lists the customer's placed orders, newest first. With an orderId
// query parameter it returns that single order instead.
func Orders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, customerID, err := requireCustomer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParseQueryUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orderID != nil {
			order, err := svc.GetCustomerOrder(r.Context(), storeID, customerID, *orderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, internalorders.ToDTO(order))
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, meta, err := svc.ListCustomerOrders(r.Context(), storeID, customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dtos := make([]internalorders.OrderDTO, 0, len(rows))
		for i := range rows {
			dtos = append(dtos, internalorders.ToDTO(&rows[i]))
		}
		responses.WritePage(w, dtos, meta)
	}
}

// requireCustomer resolves the authenticated customer and checks their token
// is bound to the storefront in the path.
func requireCustomer(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "storeId"))
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}

	customerID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil || role != enums.MemberRoleCustomer {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer role required")
	}
	tokenStore := middleware.StoreIDFromContext(r.Context())
	if tokenStore != storeID.String() {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "token is not scoped to this storefront")
	}
	return storeID, customerID, nil
}
