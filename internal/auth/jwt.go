// Package auth implements bearer token issue and verification.
// Tokens are HS256-signed with a shared secret and carry the principal id
// plus issue/expiry timestamps.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are reported distinctly so callers can phrase the
// 401 message accordingly.
var (
	ErrTokenMalformed = errors.New("malformed authentication token")
	ErrTokenExpired   = errors.New("authentication token expired")
	ErrTokenSignature = errors.New("authentication token signature invalid")
	ErrTokenInvalid   = errors.New("invalid authentication token")
)

// Claims is the token payload: the registered iat/exp claims plus the
// principal id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// GenerateToken signs a token for the given principal, valid for the given
// duration from now.
func GenerateToken(userID string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
	})

	return token.SignedString(secret)
}

// ParseToken verifies a token string and returns its claims. The signing
// algorithm is pinned to HS256; failures map to one of the package's
// sentinel errors.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenInvalid
		}
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
