package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tokopos/terminal-api/api/responses"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type orderReader interface {
	Orders(ctx context.Context, token string) ([]upstream.OrderResult, error)
	OrderDetail(ctx context.Context, token string, orderID int64) (*upstream.OrderResult, error)
}

// OrderList relays the confirmed order history.
func OrderList(client orderReader, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		_, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := client.Orders(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// OrderDetail relays one confirmed order.
func OrderDetail(client orderReader, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upstream client unavailable"))
			return
		}

		_, token, err := sessionToken(r, tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil || orderID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := client.OrderDetail(r.Context(), token, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
