package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type fakeIdempotencyStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{
		values: map[string]string{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func checkoutRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithSessionID(req.Context(), "s1"))
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"order_id":7}}`))
	})
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest("key-1", `{"toko_id":1}`))
	if first.Code != http.StatusCreated {
		t.Fatalf("first call status %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest("key-1", `{"toko_id":1}`))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("key-1", `{"toko_id":1}`))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest("key-1", `{"toko_id":2}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("", `{"toko_id":1}`))
	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("", `{"toko_id":1}`))

	if calls != 2 {
		t.Fatalf("expected both calls to run, got %d", calls)
	}
	if len(store.values) != 0 {
		t.Fatalf("keyless requests were recorded: %v", store.values)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	req = req.WithContext(WithSessionID(req.Context(), "s1"))

	handler.ServeHTTP(httptest.NewRecorder(), req)
	handler.ServeHTTP(httptest.NewRecorder(), req.Clone(req.Context()))

	if calls != 2 {
		t.Fatalf("unguarded route was deduplicated")
	}
}

func TestIdempotencyScopedPerSession(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("key-1", `{"toko_id":1}`))

	other := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"toko_id":1}`))
	other.Header.Set("Idempotency-Key", "key-1")
	other = other.WithContext(WithSessionID(other.Context(), "s2"))
	handler.ServeHTTP(httptest.NewRecorder(), other)

	if calls != 2 {
		t.Fatalf("key collided across sessions: %d calls", calls)
	}
}

func TestIdempotencyCheckoutUsesLongTTL(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, 0, nil)(countingHandler(new(int)))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest("key-1", `{}`))

	for key, ttl := range store.ttls {
		if ttl != checkoutIdempotencyTTL {
			t.Fatalf("key %s stored with ttl %s", key, ttl)
		}
	}
	if len(store.ttls) != 1 {
		t.Fatalf("expected one stored record got %d", len(store.ttls))
	}
}

// Mounts the guard the way the production router does, inside a nested route
// group where chi has not resolved the final pattern when middleware runs.
func TestIdempotencyGuardsNestedRouteGroup(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0

	seedSession := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), "s1")))
		})
	}

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(seedSession)
		r.Use(Idempotency(store, 0, nil))
		r.Post("/checkout", countingHandler(&calls).ServeHTTP)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"toko_id":1}`))
		req.Header.Set("Idempotency-Key", "key-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	first := send()
	second := send()

	if calls != 1 {
		t.Fatalf("handler ran %d times behind the route group", calls)
	}
	if len(store.values) != 1 {
		t.Fatalf("expected one stored record got %d", len(store.values))
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyConfiguredReplayTTL(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, 42*time.Minute, nil)(countingHandler(new(int)))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":2}`))
	req.Header.Set("Idempotency-Key", "key-5")
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithSessionID(req.Context(), "s1")))

	for key, ttl := range store.ttls {
		if ttl != 42*time.Minute {
			t.Fatalf("key %s stored with ttl %s", key, ttl)
		}
	}
	if len(store.ttls) != 1 {
		t.Fatalf("expected one stored record got %d", len(store.ttls))
	}
}

func TestIdempotencyCartItemsGuarded(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, 0, nil)(countingHandler(&calls))

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(`{"product_id":1,"quantity":2}`))
		r.Header.Set("Idempotency-Key", "key-9")
		return r.WithContext(WithSessionID(r.Context(), "s1"))
	}

	handler.ServeHTTP(httptest.NewRecorder(), req())
	handler.ServeHTTP(httptest.NewRecorder(), req())

	if calls != 1 {
		t.Fatalf("cart item replay ran the handler %d times", calls)
	}
}
