package controllers

import (
	"context"
	"net/http"

	"github.com/tokopos/terminal-api/api/responses"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type tokoLister interface {
	Tokos(ctx context.Context, token string) ([]upstream.Toko, error)
}

type paymentMethodLister interface {
	PaymentMethods(ctx context.Context, token string) ([]upstream.PaymentMethod, error)
}

// TokoList relays the stores the cashier can sell for.
func TokoList(client tokoLister, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
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

		tokos, err := client.Tokos(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"tokos": tokos})
	}
}

// PaymentMethodList relays the accepted payment methods.
func PaymentMethodList(client paymentMethodLister, tokens upstreamTokenSource, logg *logger.Logger) http.HandlerFunc {
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

		methods, err := client.PaymentMethods(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"payment_methods": methods})
	}
}
