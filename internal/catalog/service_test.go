package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type stubFetcher struct {
	mu            sync.Mutex
	products      []upstream.Product
	categories    []upstream.Category
	productErr    error
	categoryErr   error
	productCalls  int
	categoryCalls int
}

func (s *stubFetcher) Products(ctx context.Context, token string) ([]upstream.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productCalls++
	return s.products, s.productErr
}

func (s *stubFetcher) Categories(ctx context.Context, token string) ([]upstream.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryCalls++
	return s.categories, s.categoryErr
}

func (s *stubFetcher) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productCalls, s.categoryCalls
}

func newTestService(t *testing.T, f fetcher, ttl time.Duration) *service {
	t.Helper()
	svc, err := NewService(f, ttl)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service)
}

func TestSnapshotFetchesOnFirstUse(t *testing.T) {
	f := &stubFetcher{
		products:   []upstream.Product{{ID: 1, Name: "Kopi Susu", UnitPrice: 15000, Available: true}},
		categories: []upstream.Category{{ID: 1, Name: "Minuman"}},
	}
	svc := newTestService(t, f, time.Minute)

	snapshot, err := svc.Snapshot(context.Background(), "token")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snapshot.Products()) != 1 || len(snapshot.Categories()) != 1 {
		t.Fatalf("unexpected snapshot: %d products %d categories", len(snapshot.Products()), len(snapshot.Categories()))
	}
	if _, found := snapshot.Lookup(1); !found {
		t.Fatalf("product 1 not indexed")
	}
}

func TestSnapshotServedFromCacheWithinTTL(t *testing.T) {
	f := &stubFetcher{products: []upstream.Product{{ID: 1}}}
	svc := newTestService(t, f, time.Minute)

	if _, err := svc.Snapshot(context.Background(), "token"); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if _, err := svc.Snapshot(context.Background(), "token"); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	productCalls, _ := f.calls()
	if productCalls != 1 {
		t.Fatalf("expected 1 fetch within ttl got %d", productCalls)
	}
}

func TestSnapshotRefreshesAfterTTL(t *testing.T) {
	f := &stubFetcher{products: []upstream.Product{{ID: 1}}}
	svc := newTestService(t, f, time.Minute)

	now := time.Now()
	svc.clock = func() time.Time { return now }
	if _, err := svc.Snapshot(context.Background(), "token"); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	svc.clock = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := svc.Snapshot(context.Background(), "token"); err != nil {
		t.Fatalf("stale snapshot: %v", err)
	}

	productCalls, _ := f.calls()
	if productCalls != 2 {
		t.Fatalf("expected refetch after ttl got %d calls", productCalls)
	}
}

func TestSnapshotFallsBackToStaleOnRefreshFailure(t *testing.T) {
	f := &stubFetcher{products: []upstream.Product{{ID: 1, Name: "Kopi Susu"}}}
	svc := newTestService(t, f, time.Minute)

	now := time.Now()
	svc.clock = func() time.Time { return now }
	first, err := svc.Snapshot(context.Background(), "token")
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	f.mu.Lock()
	f.productErr = errors.New("upstream down")
	f.mu.Unlock()
	svc.clock = func() time.Time { return now.Add(2 * time.Minute) }

	second, err := svc.Snapshot(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if second != first {
		t.Fatalf("expected the cached snapshot back")
	}
}

func TestSnapshotErrorsWhenNeverFetched(t *testing.T) {
	f := &stubFetcher{productErr: errors.New("upstream down")}
	svc := newTestService(t, f, time.Minute)

	_, err := svc.Snapshot(context.Background(), "token")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
}

func TestRefreshKeepsTypedErrors(t *testing.T) {
	f := &stubFetcher{productErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")}
	svc := newTestService(t, f, time.Minute)

	_, err := svc.Refresh(context.Background(), "token")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	f := &stubFetcher{products: []upstream.Product{{ID: 1}}}
	svc := newTestService(t, f, time.Hour)

	if _, err := svc.Refresh(context.Background(), "token"); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "token"); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	productCalls, categoryCalls := f.calls()
	if productCalls != 2 || categoryCalls != 2 {
		t.Fatalf("refresh served from cache: %d/%d calls", productCalls, categoryCalls)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, time.Minute); err == nil {
		t.Fatalf("expected error for nil fetcher")
	}
	if _, err := NewService(&stubFetcher{}, 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
