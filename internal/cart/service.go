package cart

import (
	"context"
	"fmt"

	"github.com/tokopos/terminal-api/internal/catalog"
	"github.com/tokopos/terminal-api/internal/pricing"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
)

// MaxLineQuantity bounds a single line so unitPrice*quantity stays well
// inside int64 for any realistic catalog price.
const MaxLineQuantity = 1_000_000

type catalogProvider interface {
	Snapshot(ctx context.Context, token string) (*catalog.Snapshot, error)
}

// Service exposes cart mutations and quoting for one terminal session at a
// time. The store itself never errors; validation happens here.
type Service interface {
	SetItem(ctx context.Context, sessionID, token string, productID, quantity int64) (*pricing.Quote, error)
	RemoveItem(ctx context.Context, sessionID, token string, productID int64) (*pricing.Quote, error)
	Clear(ctx context.Context, sessionID string)
	Quote(ctx context.Context, sessionID, token string) (*pricing.Quote, error)
}

type service struct {
	store   *Store
	catalog catalogProvider
}

// NewService builds a cart service backed by the in-memory store.
func NewService(store *Store, catalogSvc catalogProvider) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog provider required")
	}
	return &service{store: store, catalog: catalogSvc}, nil
}

// SetItem sets the quantity for a product and returns the refreshed quote.
// A quantity <= 0 removes the line, mirroring the store's invariant. Adding a
// product the catalog has never heard of is rejected; lines that go stale
// after being added are handled by the quote's warning policy instead.
func (s *service) SetItem(ctx context.Context, sessionID, token string, productID, quantity int64) (*pricing.Quote, error) {
	if quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds maximum")
	}

	snapshot, err := s.catalog.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		product, found := snapshot.Lookup(productID)
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !product.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
		}
	}

	s.store.AddOrSetQuantity(sessionID, productID, quantity)
	return s.quoteAgainst(sessionID, snapshot), nil
}

// RemoveItem deletes a line unconditionally and returns the refreshed quote.
func (s *service) RemoveItem(ctx context.Context, sessionID, token string, productID int64) (*pricing.Quote, error) {
	snapshot, err := s.catalog.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	s.store.Remove(sessionID, productID)
	return s.quoteAgainst(sessionID, snapshot), nil
}

// Clear empties the session's cart.
func (s *service) Clear(ctx context.Context, sessionID string) {
	s.store.Clear(sessionID)
}

// Quote prices the current cart against the live catalog snapshot.
func (s *service) Quote(ctx context.Context, sessionID, token string) (*pricing.Quote, error) {
	snapshot, err := s.catalog.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.quoteAgainst(sessionID, snapshot), nil
}

func (s *service) quoteAgainst(sessionID string, snapshot *catalog.Snapshot) *pricing.Quote {
	quote := pricing.Compute(s.store.Snapshot(sessionID), snapshot)
	return &quote
}
