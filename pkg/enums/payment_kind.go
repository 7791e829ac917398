package enums

import "fmt"

// PaymentKind distinguishes settlement flows at the register. Cash is the only
// kind that requires a tendered amount; everything else is captured upstream.
type PaymentKind string

const (
	PaymentKindCash     PaymentKind = "cash"
	PaymentKindQRIS     PaymentKind = "qris"
	PaymentKindCard     PaymentKind = "card"
	PaymentKindTransfer PaymentKind = "transfer"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindCash,
	PaymentKindQRIS,
	PaymentKindCard,
	PaymentKindTransfer,
}

// String implements fmt.Stringer.
func (p PaymentKind) String() string {
	return string(p)
}

// IsValid reports whether the payment kind is recognized.
func (p PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresTender reports whether the kind needs a cash tender at checkout.
func (p PaymentKind) RequiresTender() bool {
	return p == PaymentKindCash
}

// ParsePaymentKind converts a raw string into a PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
