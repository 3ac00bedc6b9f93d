// Package auth reads the caller's identity out of the bearer token.
package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoUserID is returned when the token carries no usable user id.
var ErrNoUserID = errors.New("token has no user id")

// userIDClaims are checked in order.
var userIDClaims = []string{"userId", "id", "sub"}

// UserID extracts the user id from token without verifying its signature.
// The server verifies every request; the client only needs to know who it is
// before /users/me answers.
func UserID(token string) (int64, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, fmt.Errorf("auth.UserID: %w", err)
	}
	for _, name := range userIDClaims {
		if id, ok := numericClaim(claims[name]); ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("auth.UserID: %w", ErrNoUserID)
}

func numericClaim(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x > 0 && x == float64(int64(x)) {
			return int64(x), true
		}
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
