package cart

import (
	"context"
	"testing"
	"time"

	"github.com/tokopos/terminal-api/internal/catalog"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type stubCatalogProvider struct {
	snapshot *catalog.Snapshot
	err      error
}

func (s stubCatalogProvider) Snapshot(ctx context.Context, token string) (*catalog.Snapshot, error) {
	return s.snapshot, s.err
}

func testSnapshot(products ...upstream.Product) *catalog.Snapshot {
	return catalog.NewSnapshot(products, nil, time.Now())
}

func TestServiceSetItem(t *testing.T) {
	store := NewStore()
	provider := stubCatalogProvider{snapshot: testSnapshot(
		upstream.Product{ID: 1, Name: "Kopi Susu", UnitPrice: 15000, Available: true},
	)}
	svc, err := NewService(store, provider)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	quote, err := svc.SetItem(context.Background(), "s1", "token", 1, 2)
	if err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if quote.Subtotal != 30000 {
		t.Fatalf("expected subtotal 30000 got %d", quote.Subtotal)
	}
	if store.Snapshot("s1")[1] != 2 {
		t.Fatalf("store not updated: %v", store.Snapshot("s1"))
	}
}

func TestServiceSetItemUnknownProduct(t *testing.T) {
	store := NewStore()
	svc, _ := NewService(store, stubCatalogProvider{snapshot: testSnapshot()})

	_, err := svc.SetItem(context.Background(), "s1", "token", 99, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
	if len(store.Snapshot("s1")) != 0 {
		t.Fatalf("rejected item mutated the cart")
	}
}

func TestServiceSetItemUnavailableProduct(t *testing.T) {
	svc, _ := NewService(NewStore(), stubCatalogProvider{snapshot: testSnapshot(
		upstream.Product{ID: 1, UnitPrice: 15000, Available: false},
	)})

	_, err := svc.SetItem(context.Background(), "s1", "token", 1, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestServiceSetItemRejectsExcessiveQuantity(t *testing.T) {
	store := NewStore()
	svc, _ := NewService(store, stubCatalogProvider{snapshot: testSnapshot(
		upstream.Product{ID: 1, UnitPrice: 15000, Available: true},
	)})

	_, err := svc.SetItem(context.Background(), "s1", "token", 1, MaxLineQuantity+1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	if len(store.Snapshot("s1")) != 0 {
		t.Fatalf("rejected quantity mutated the cart")
	}

	if _, err := svc.SetItem(context.Background(), "s1", "token", 1, MaxLineQuantity); err != nil {
		t.Fatalf("max quantity rejected: %v", err)
	}
}

func TestServiceSetItemZeroQuantityRemovesStaleLine(t *testing.T) {
	// The product is gone from the catalog, yet setting quantity zero still
	// removes the line; removal never requires catalog presence.
	store := NewStore()
	store.AddOrSetQuantity("s1", 99, 2)
	svc, _ := NewService(store, stubCatalogProvider{snapshot: testSnapshot()})

	quote, err := svc.SetItem(context.Background(), "s1", "token", 99, 0)
	if err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if len(store.Snapshot("s1")) != 0 {
		t.Fatalf("stale line not removed")
	}
	if len(quote.Warnings) != 0 {
		t.Fatalf("removed line still warned: %+v", quote.Warnings)
	}
}

func TestServiceRemoveItem(t *testing.T) {
	store := NewStore()
	store.AddOrSetQuantity("s1", 1, 2)
	svc, _ := NewService(store, stubCatalogProvider{snapshot: testSnapshot(
		upstream.Product{ID: 1, UnitPrice: 15000, Available: true},
	)})

	quote, err := svc.RemoveItem(context.Background(), "s1", "token", 1)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(quote.Lines) != 0 || quote.GrandTotal != 0 {
		t.Fatalf("expected empty quote got %+v", quote)
	}
}

func TestServiceQuoteReportsStaleLines(t *testing.T) {
	store := NewStore()
	store.AddOrSetQuantity("s1", 1, 1)
	store.AddOrSetQuantity("s1", 99, 4)
	svc, _ := NewService(store, stubCatalogProvider{snapshot: testSnapshot(
		upstream.Product{ID: 1, Name: "Kopi Susu", UnitPrice: 10000, Available: true},
	)})

	quote, err := svc.Quote(context.Background(), "s1", "token")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Subtotal != 10000 {
		t.Fatalf("expected subtotal 10000 got %d", quote.Subtotal)
	}
	if len(quote.Warnings) != 1 || quote.Warnings[0].ProductID != 99 {
		t.Fatalf("expected stale warning got %+v", quote.Warnings)
	}
	// The stale line stays in the cart for the cashier to resolve.
	if store.Snapshot("s1")[99] != 4 {
		t.Fatalf("stale line dropped from the cart")
	}
}

func TestServiceQuoteCatalogError(t *testing.T) {
	svc, _ := NewService(NewStore(), stubCatalogProvider{
		err: pkgerrors.New(pkgerrors.CodeDependency, "catalog down"),
	})

	_, err := svc.Quote(context.Background(), "s1", "token")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(nil, stubCatalogProvider{}); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewService(NewStore(), nil); err == nil {
		t.Fatalf("expected error for nil catalog provider")
	}
}
