package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// TripTokenClaims identifies a user allowed into a trip's session.
type TripTokenClaims struct {
	TripID string `json:"tripId"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ValidateTripToken checks the HMAC signature and returns the claims.
// Tokens are minted by the auth service; this server only verifies them.
func ValidateTripToken(tokenStr string, secret []byte) (*TripTokenClaims, error) {
	claims := &TripTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
