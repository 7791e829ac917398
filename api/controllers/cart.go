package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tokopos/terminal-api/api/middleware"
	"github.com/tokopos/terminal-api/api/responses"
	"github.com/tokopos/terminal-api/api/validators"
	cartsvc "github.com/tokopos/terminal-api/internal/cart"
	"github.com/tokopos/terminal-api/internal/settlement"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
)

type setItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"max=1000000"`
}

type settlementPreviewRequest struct {
	Tendered string `json:"tendered" validate:"required"`
}

// CartFetch prices the session's cart against the current catalog.
func CartFetch(svc cartsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), sessionID, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CartSetItem sets a line's quantity. Zero or negative removes the line.
func CartSetItem(svc cartsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.SetItem(r.Context(), sessionID, token, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CartRemoveItem deletes a line regardless of its catalog state. Stale lines
// are removable this way even though they can no longer be added.
func CartRemoveItem(svc cartsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		quote, err := svc.RemoveItem(r.Context(), sessionID, token, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CartClear empties the session's cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		svc.Clear(r.Context(), sessionID)
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// CartSettlementPreview evaluates a cash tender against the live quote without
// touching the cart. The terminal shows change or shortfall before confirm.
func CartSettlementPreview(svc cartsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settlementPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), sessionID, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome := settlement.Settle(quote.GrandTotal, payload.Tendered)
		responses.WriteSuccess(w, map[string]any{
			"quote":      quote,
			"settlement": outcome,
		})
	}
}
