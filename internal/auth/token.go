package auth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the subset of hosted-auth JWT claims we care about: the
// subject (user id) and email.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerifyAccessToken parses and verifies an HS256 access token and returns
// the user id and email from its claims. Expired or tampered tokens fail.
func VerifyAccessToken(token, secret string) (int64, string, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, "", fmt.Errorf("parse access token: %w", err)
	}
	if !parsed.Valid {
		return 0, "", fmt.Errorf("invalid access token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid subject %q: %w", claims.Subject, err)
	}
	return userID, claims.Email, nil
}
