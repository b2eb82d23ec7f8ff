package stock

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/middleware"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/responses"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/api/validators"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/internal/authz"
	internalstock "github.com/MoxiumTech/EcoReactAdmin-sub001/internal/stock"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	pkgerrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

// ListMovements returns the paginated stock audit for a store, newest first.
// Supports variantId and orderId query filters.
func ListMovements(svc internalstock.Service, auth authz.Authorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := requireStaff(r, auth, storeID, authz.PermStockView); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseQueryUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseQueryUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, meta, err := svc.ListMovements(r.Context(), storeID, internalstock.MovementFilters{
			VariantID: variantID,
			OrderID:   orderID,
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, internalstock.MovementsToDTO(movements), meta)
	}
}

type adjustRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

// Adjust applies a manual stock correction and records its ledger row.
func Adjust(svc internalstock.Service, auth authz.Authorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := parseStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := requireStaff(r, auth, storeID, authz.PermStockManage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}
		movementType, err := enums.ParseStockMovementType(strings.TrimSpace(req.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		movement, err := svc.ManualAdjust(r.Context(), internalstock.AdjustInput{
			VariantID: variantID,
			StoreID:   storeID,
			Delta:     req.Quantity,
			Type:      movementType,
			Reason:    strings.TrimSpace(req.Reason),
			Originator: internalstock.Originator{
				Type: enums.OriginatorTypeAdmin,
				ID:   actor,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalstock.MovementToDTO(movement))
	}
}

func parseStoreID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "storeId"))
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return storeID, nil
}

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
