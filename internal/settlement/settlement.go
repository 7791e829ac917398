package settlement

import (
	"strconv"
	"strings"
)

// Settlement is the cash-tender outcome for a grand total. Change is negative
// on a shortfall; callers display the absolute value with a shortfall label.
type Settlement struct {
	Tendered   int64 `json:"tendered"`
	Change     int64 `json:"change"`
	Sufficient bool  `json:"sufficient"`
}

// ParseTender parses user cash input as a non-negative integer amount in minor
// units. The boolean is false for anything that is not one; callers treat that
// as a zero tender, which fails sufficiency without erroring.
func ParseTender(input string) (int64, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// Change returns tendered minus the grand total. Negative means shortfall.
func Change(grandTotal, tendered int64) int64 {
	return tendered - grandTotal
}

// IsSufficient reports whether the tender covers the grand total.
func IsSufficient(grandTotal, tendered int64) bool {
	return tendered >= grandTotal
}

// Settle evaluates raw tender input against a grand total. Invalid input
// settles as a zero tender.
func Settle(grandTotal int64, input string) Settlement {
	tendered, ok := ParseTender(input)
	if !ok {
		tendered = 0
	}
	return Settlement{
		Tendered:   tendered,
		Change:     Change(grandTotal, tendered),
		Sufficient: IsSufficient(grandTotal, tendered),
	}
}
