package catalog

import (
	"time"

	"github.com/tokopos/terminal-api/pkg/upstream"
)

// Snapshot is an immutable view of the upstream catalog at one point in time.
// The pricing engine and checkout resolve cart lines against a single snapshot
// so a refresh mid-computation cannot skew totals.
type Snapshot struct {
	products   []upstream.Product
	categories []upstream.Category
	byID       map[int64]upstream.Product
	fetchedAt  time.Time
}

// NewSnapshot indexes the fetched catalog records.
func NewSnapshot(products []upstream.Product, categories []upstream.Category, fetchedAt time.Time) *Snapshot {
	byID := make(map[int64]upstream.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Snapshot{
		products:   products,
		categories: categories,
		byID:       byID,
		fetchedAt:  fetchedAt,
	}
}

// Lookup resolves a product id. The boolean reports catalog presence only;
// callers decide how to treat unavailable products.
func (s *Snapshot) Lookup(productID int64) (upstream.Product, bool) {
	if s == nil {
		return upstream.Product{}, false
	}
	p, ok := s.byID[productID]
	return p, ok
}

// Products returns the product list in upstream order.
func (s *Snapshot) Products() []upstream.Product {
	if s == nil {
		return nil
	}
	return s.products
}

// Categories returns the category list in upstream order.
func (s *Snapshot) Categories() []upstream.Category {
	if s == nil {
		return nil
	}
	return s.categories
}

// FetchedAt reports when the snapshot was taken.
func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}
