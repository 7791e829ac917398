package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/tokopos/terminal-api/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a terminal JWT.
type AccessTokenPayload struct {
	CashierName string
	Role        enums.ActorRole
	TokoID      *int64
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to terminal clients.
type AccessTokenClaims struct {
	CashierName string          `json:"cashier_name"`
	Role        enums.ActorRole `json:"role"`
	TokoID      *int64          `json:"toko_id,omitempty"`
	jwt.RegisteredClaims
}
