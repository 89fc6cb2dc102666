package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityPayload captures the data available when minting an identity token.
type IdentityPayload struct {
	Email   string
	Subject string
}

// IdentityClaims is the identity provider's token body.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CustomerID is the stable identifier orders are placed under: the email when present, otherwise the subject.
func (c *IdentityClaims) CustomerID() string {
	if c == nil {
		return ""
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		return email
	}
	return strings.TrimSpace(c.Subject)
}
