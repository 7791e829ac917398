package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

// taxRate is the flat percentage applied once on the cart subtotal.
var taxRate = decimal.RequireFromString("0.10")

// WarningReason explains why a cart line was excluded from totals.
type WarningReason string

const (
	WarningNotInCatalog WarningReason = "not_in_catalog"
	WarningUnavailable  WarningReason = "unavailable"
)

// Line is a priced cart entry that resolved against the catalog.
type Line struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// Warning flags a cart entry that no longer resolves in the catalog. Such
// entries stay visible but never contribute to totals or submissions.
type Warning struct {
	ProductID int64         `json:"product_id"`
	Quantity  int64         `json:"quantity"`
	Reason    WarningReason `json:"reason"`
}

// Quote is the full monetary breakdown for a cart snapshot. All amounts are
// integer minor currency units.
type Quote struct {
	Lines      []Line    `json:"lines"`
	Warnings   []Warning `json:"warnings,omitempty"`
	Subtotal   int64     `json:"subtotal"`
	Tax        int64     `json:"tax"`
	GrandTotal int64     `json:"grand_total"`
}

// Lookup resolves a product id against the current catalog snapshot. The
// boolean reports presence; availability is checked by the engine.
type Lookup interface {
	Lookup(productID int64) (upstream.Product, bool)
}

// LineSubtotal prices a single resolved line.
func LineSubtotal(product upstream.Product, quantity int64) int64 {
	return product.UnitPrice * quantity
}

// Tax computes the flat tax on a subtotal, rounded half-up exactly once.
// Per-line accumulation is deliberately avoided so the sum of lines and the
// total can never drift apart.
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(taxRate).Round(0).IntPart()
}

// Compute derives the quote for a cart snapshot against the catalog. Entries
// that do not resolve are skipped, not zero-priced, and reported as warnings.
// Lines are ordered by product id so quotes are deterministic.
func Compute(snapshot map[int64]int64, catalog Lookup) Quote {
	ids := make([]int64, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	quote := Quote{}
	for _, id := range ids {
		qty := snapshot[id]
		if qty <= 0 {
			continue
		}
		product, found := catalog.Lookup(id)
		if !found {
			quote.Warnings = append(quote.Warnings, Warning{ProductID: id, Quantity: qty, Reason: WarningNotInCatalog})
			continue
		}
		if !product.Available {
			quote.Warnings = append(quote.Warnings, Warning{ProductID: id, Quantity: qty, Reason: WarningUnavailable})
			continue
		}
		subtotal := LineSubtotal(product, qty)
		quote.Lines = append(quote.Lines, Line{
			ProductID: id,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  qty,
			Subtotal:  subtotal,
		})
		quote.Subtotal += subtotal
	}

	quote.Tax = Tax(quote.Subtotal)
	quote.GrandTotal = quote.Subtotal + quote.Tax
	return quote
}
