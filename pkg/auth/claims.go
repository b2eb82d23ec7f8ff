package auth

import (
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// StoreID binds customer sessions to one storefront and scopes staff sessions
// to the store they administer.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    enums.MemberRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID        `json:"user_id"`
	StoreID *uuid.UUID       `json:"store_id,omitempty"`
	Role    enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
