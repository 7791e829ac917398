package controllers

import (
	"net/http"

	"github.com/tokopos/terminal-api/api/responses"
	"github.com/tokopos/terminal-api/api/validators"
	checkoutsvc "github.com/tokopos/terminal-api/internal/checkout"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
)

type checkoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,min=1,max=120"`
	TokoID          int64  `json:"toko_id" validate:"required,min=1"`
	PaymentMethodID int64  `json:"payment_method_id" validate:"required,min=1"`
	PaymentKind     string `json:"payment_kind" validate:"required"`
	CashTendered    string `json:"cash_tendered,omitempty"`
}

// Checkout submits the session's cart as an order. On success the cart is
// cleared and the confirmed order returned; on failure the cart is untouched.
func Checkout(svc checkoutsvc.Service, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePaymentKind(payload.PaymentKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment kind"))
			return
		}

		result, err := svc.Submit(r.Context(), sessionID, token, checkoutsvc.SubmitInput{
			CustomerName:    payload.CustomerName,
			TokoID:          payload.TokoID,
			PaymentMethodID: payload.PaymentMethodID,
			PaymentKind:     kind,
			CashTendered:    payload.CashTendered,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
