package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestUserID(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   int64
	}{
		{"userId number", jwt.MapClaims{"userId": 42}, 42},
		{"id claim", jwt.MapClaims{"id": 7}, 7},
		{"sub string", jwt.MapClaims{"sub": "19"}, 19},
		{"userId wins over sub", jwt.MapClaims{"userId": 3, "sub": "9"}, 3},
		{"non-numeric sub skipped", jwt.MapClaims{"sub": "alice", "id": 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserID(sign(t, tt.claims))
			if err != nil {
				t.Fatalf("UserID: %v", err)
			}
			if got != tt.want {
				t.Errorf("UserID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserIDMissing(t *testing.T) {
	_, err := UserID(sign(t, jwt.MapClaims{"sub": "alice"}))
	if !errors.Is(err, ErrNoUserID) {
		t.Fatalf("err = %v, want ErrNoUserID", err)
	}
}

func TestUserIDMalformed(t *testing.T) {
	if _, err := UserID("not-a-jwt"); err == nil {
		t.Fatal("expected error")
	}
}
