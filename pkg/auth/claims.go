package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT. Tokens
// are normally issued by the identity service; minting lives here for tests
// and local tooling.
type AccessTokenPayload struct {
	OwnerID uuid.UUID
	Company string
	JTI     string
}

// AccessTokenClaims represents the typed JWT presented by clients. OwnerID
// is the tenant every request is scoped to.
type AccessTokenClaims struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Company string    `json:"company,omitempty"`
	jwt.RegisteredClaims
}
