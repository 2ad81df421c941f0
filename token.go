package accounts

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenTTL bounds the lifetime of an issued session token.
const TokenTTL = 10 * time.Hour

// issueToken signs a bearer token for an account. The account referenced by
// id must already be persisted; a signing failure here is surfaced to the
// caller without undoing the creation.
func issueToken(id ID, key []byte, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", ErrSigningToken
	}

	claims := jwt.StandardClaims{
		Issuer:    "accounts",
		Subject:   string(id),
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", ErrSigningToken
	}
	return signed, nil
}

// parseToken verifies a bearer token and returns the account ID it was
// issued for.
func parseToken(tokenString string, key []byte) (ID, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return ID(claims.Subject), nil
}
