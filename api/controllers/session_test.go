package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokopos/terminal-api/api/middleware"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
)

type stubPreferences struct {
	currency enums.Currency
	set      enums.Currency
	err      error
}

func (s *stubPreferences) Currency(ctx context.Context, sessionID string) (enums.Currency, error) {
	return s.currency, s.err
}

func (s *stubPreferences) SetCurrency(ctx context.Context, sessionID string, currency enums.Currency) error {
	if s.err != nil {
		return s.err
	}
	s.set = currency
	return nil
}

func TestSessionPreferences(t *testing.T) {
	prefs := &stubPreferences{currency: enums.CurrencyUSD}
	handler := SessionPreferences(prefs, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/preferences", nil)
	ctx := middleware.WithSessionID(req.Context(), "s1")
	ctx = middleware.WithRole(ctx, "cashier")
	ctx = middleware.WithCashierName(ctx, "Siti")
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data sessionPreferencesResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CashierName != "Siti" || envelope.Data.Currency != enums.CurrencyUSD {
		t.Fatalf("unexpected preferences: %+v", envelope.Data)
	}
}

func TestSessionSetCurrency(t *testing.T) {
	prefs := &stubPreferences{}
	handler := SessionSetCurrency(prefs, nil)

	body := strings.NewReader(`{"currency":"USD"}`)
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/v1/session/currency", body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if prefs.set != enums.CurrencyUSD {
		t.Fatalf("currency not stored: %q", prefs.set)
	}
}

func TestSessionSetCurrencyInvalid(t *testing.T) {
	handler := SessionSetCurrency(&stubPreferences{}, nil)

	body := strings.NewReader(`{"currency":"DOGE"}`)
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/v1/session/currency", body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSessionSetCurrencyDependencyFailure(t *testing.T) {
	prefs := &stubPreferences{err: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}
	handler := SessionSetCurrency(prefs, nil)

	body := strings.NewReader(`{"currency":"USD"}`)
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/v1/session/currency", body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

type stubWatcher struct {
	updates chan enums.Currency
	err     error
}

func (s *stubWatcher) WatchCurrency(ctx context.Context, sessionID string) (<-chan enums.Currency, error) {
	return s.updates, s.err
}

func TestSessionWatchCurrencyStreamsEvents(t *testing.T) {
	updates := make(chan enums.Currency, 1)
	updates <- enums.CurrencyUSD
	close(updates)
	handler := SessionWatchCurrency(&stubWatcher{updates: updates}, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session/currency/watch", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "data: USD") {
		t.Fatalf("event not streamed: %q", resp.Body.String())
	}
}
