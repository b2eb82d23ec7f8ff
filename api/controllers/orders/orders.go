package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/responses"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/validators"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/authz"
	internalorders "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/orders"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	pkgerrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Transition advances an order to the requested status.
func Transition(svc internalorders.Service, auth authz.Authorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, orderID, err := parseOrderPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := requireStaff(r, auth, storeID, authz.PermOrdersManage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.Transition(r.Context(), internalorders.TransitionInput{
			OrderID: orderID,
			StoreID: storeID,
			Target:  target,
			Reason:  strings.TrimSpace(req.Reason),
			Originator: stock.Originator{
				Type: enums.OriginatorTypeAdmin,
				ID:   actor,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToDTO(order))
	}
}

// Detail returns one order with its line items, status history and stock
// movements.
func Detail(svc internalorders.Service, auth authz.Authorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, orderID, err := parseOrderPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := requireStaff(r, auth, storeID, authz.PermOrdersView); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), storeID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.ToDTO(order))
	}
}

// StatusHistory returns the order's transition audit trail, newest first.
func StatusHistory(svc internalorders.Service, auth authz.Authorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, orderID, err := parseOrderPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := requireStaff(r, auth, storeID, authz.PermOrdersView); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListStatusHistory(r.Context(), storeID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.HistoryToDTO(entries))
	}
}

func parseOrderPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	storeID, err := parseStoreID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	rawOrderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return storeID, orderID, nil
}

func parseStoreID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "storeId"))
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return storeID, nil
}

// requireStaff resolves the authenticated actor, checks they act through a
// staff role and asks the authorizer for the named permission.
func requireStaff(r *http.Request, auth authz.Authorizer, storeID uuid.UUID, permission string) (uuid.UUID, error) {
	rawUserID := middleware.UserIDFromContext(r.Context())
	actor, err := uuid.Parse(rawUserID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil || !role.IsStoreStaff() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if auth == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "authorizer unavailable")
	}
	if err := auth.Authorize(r.Context(), actor, storeID, permission); err != nil {
		return uuid.Nil, err
	}
	return actor, nil
}
