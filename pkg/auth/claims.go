package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims carries the identity payload embedded in access tokens.
type AccessTokenClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input for minting a token.
type AccessTokenPayload struct {
	UserID int64
	Role   string
}
