package models

// TokenClaims holds the claims extracted from a verified bearer token.
// Ephemeral: built during verification and discarded once an Identity is
// resolved from it.
type TokenClaims struct {
	Sub       string `json:"sub"`   // Subject (user ID from the auth provider)
	Email     string `json:"email"` // User email, may be empty
	Exp       int64  `json:"exp"`   // Expiration time (epoch seconds)
	Iss       string `json:"iss"`   // Issuer
	Aud       string `json:"aud"`   // Audience
	Algorithm string `json:"-"`     // Signing algorithm declared in the token header
}
