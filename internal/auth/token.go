package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "moviereviews"

var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(tokenIssuer),
	jwt.WithExpirationRequired(),
)

// NewAccessToken signs an HS256 token whose subject is the user id.
func NewAccessToken(userId, secret string, ttl time.Duration) (string, error) {
	issuedAt := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken verifies the token and returns the user id it was issued
// for. Every failure maps to one of the package's sentinel errors.
func ParseAccessToken(tokenString, secret string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := tokenParser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case err != nil:
		return "", ErrInvalidToken
	case claims.Subject == "":
		return "", ErrTokenWithNoSubject
	}
	return claims.Subject, nil
}
