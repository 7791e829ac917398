package upstream

import "github.com/tokopos/terminal-api/pkg/enums"

// Product is the upstream catalog record. UnitPrice is in minor currency units.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	UnitPrice  int64   `json:"unit_price"`
	Available  bool    `json:"available"`
	CategoryID int64   `json:"category_id"`
	TokoIDs    []int64 `json:"toko_ids,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Toko is a store/branch the terminal can sell on behalf of.
type Toko struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type PaymentMethod struct {
	ID   int64             `json:"id"`
	Name string            `json:"name"`
	Kind enums.PaymentKind `json:"kind"`
}

// OrderItem is one line of a submitted order.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Amount    int64 `json:"amount"`
}

// OrderRequest is the finalized submission payload. Immutable once built.
type OrderRequest struct {
	CustomerName    string      `json:"customer_name"`
	PaymentMethodID int64       `json:"payment_method_id"`
	TokoID          int64       `json:"toko_id"`
	Items           []OrderItem `json:"items"`
}

// OrderResultItem is a confirmed line with upstream-resolved name and price.
type OrderResultItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Amount    int64  `json:"amount"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderResult mirrors the backend's confirmed order record.
type OrderResult struct {
	ID           int64             `json:"id"`
	Status       enums.OrderStatus `json:"status"`
	CustomerName string            `json:"customer_name"`
	Subtotal     int64             `json:"subtotal"`
	Tax          int64             `json:"tax"`
	Total        int64             `json:"total"`
	Items        []OrderResultItem `json:"items"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the upstream bearer token plus the cashier identity.
type LoginResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
