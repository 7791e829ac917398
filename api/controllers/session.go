package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tokopos/terminal-api/api/middleware"
	"github.com/tokopos/terminal-api/api/responses"
	"github.com/tokopos/terminal-api/api/validators"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
)

type preferenceManager interface {
	Currency(ctx context.Context, sessionID string) (enums.Currency, error)
	SetCurrency(ctx context.Context, sessionID string, currency enums.Currency) error
}

type currencyWatcher interface {
	WatchCurrency(ctx context.Context, sessionID string) (<-chan enums.Currency, error)
}

type sessionPreferencesResponse struct {
	CashierName string         `json:"cashier_name"`
	Role        string         `json:"role"`
	Currency    enums.Currency `json:"currency"`
}

type setCurrencyRequest struct {
	Currency string `json:"currency" validate:"required"`
}

// SessionPreferences returns the terminal's identity and display preferences.
func SessionPreferences(prefs preferenceManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		currency, err := prefs.Currency(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionPreferencesResponse{
			CashierName: middleware.CashierNameFromContext(r.Context()),
			Role:        middleware.RoleFromContext(r.Context()),
			Currency:    currency,
		})
	}
}

// SessionSetCurrency stores the display currency and broadcasts the change to
// any terminal watching the session.
func SessionSetCurrency(prefs preferenceManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if prefs == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		var payload setCurrencyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		if err := prefs.SetCurrency(r.Context(), sessionID, currency); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"currency": currency})
	}
}

// SessionWatchCurrency streams currency changes as server-sent events until
// the client disconnects. A second terminal mirroring the register follows
// currency switches live through this stream.
func SessionWatchCurrency(watcher currencyWatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if watcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		updates, err := watcher.WatchCurrency(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case currency, open := <-updates:
				if !open {
					return
				}
				fmt.Fprintf(w, "event: currency\ndata: %s\n\n", currency)
				flusher.Flush()
			}
		}
	}
}
