package auth

import "time"

// AccessClaims are the claims carried in a PASETO access token. The token
// is encrypted, so these are unreadable without the server key.
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
