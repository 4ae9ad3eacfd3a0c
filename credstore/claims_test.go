package credstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func TestTokenSubject(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{
			name:  "subject claim present",
			token: "", // filled below
			want:  "user-123",
		},
		{
			name:  "opaque token",
			token: "not-a-jwt",
			want:  "",
		},
		{
			name:  "empty token",
			token: "",
			want:  "",
		},
	}
	tests[0].token = signToken(t, jwt.MapClaims{"sub": "user-123"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenSubject(tt.token); got != tt.want {
				t.Errorf("TokenSubject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(1 * time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": expiry.Unix(),
	})

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatalf("Expected expiry to be extracted")
	}
	if !got.Equal(expiry) {
		t.Errorf("TokenExpiry() = %v, want %v", got, expiry)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "user-123"})

	if _, ok := TokenExpiry(token); ok {
		t.Errorf("Expected ok=false for a token without an exp claim")
	}
}

func TestTokenExpiry_MalformedToken(t *testing.T) {
	if _, ok := TokenExpiry("garbage"); ok {
		t.Errorf("Expected ok=false for a malformed token")
	}
}
