package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signHMAC(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestNewValidatorRequiresKey(t *testing.T) {
	if _, err := NewValidator(ValidatorConfig{}); err == nil {
		t.Fatal("expected an error without any verification key")
	}
	if _, err := NewValidator(ValidatorConfig{SkipVerification: true}); err != nil {
		t.Fatalf("skip-verification mode should not need a key: %v", err)
	}
	if _, err := NewValidator(ValidatorConfig{PublicKeyPEM: "not a pem"}); err == nil {
		t.Fatal("expected an error for a malformed public key")
	}
}

func TestValidateHMAC(t *testing.T) {
	v, err := NewValidator(ValidatorConfig{HMACSecret: testSecret})
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	token := signHMAC(t, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	claims, err := v.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims["sub"] != "u-1" {
		t.Errorf("sub = %v, want u-1", claims["sub"])
	}
}

func TestValidateRejections(t *testing.T) {
	v, err := NewValidator(ValidatorConfig{
		HMACSecret: testSecret,
		Issuer:     "https://idp",
		Audience:   "celine",
	})
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	valid := jwt.MapClaims{
		"sub": "u-1",
		"iss": "https://idp",
		"aud": "celine",
		"exp": time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{"expired", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{"missing exp", func(c jwt.MapClaims) { delete(c, "exp") }},
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://other" }},
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "other" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			for k, v := range valid {
				claims[k] = v
			}
			tt.mutate(claims)
			if _, err := v.Validate(signHMAC(t, claims)); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	if _, err := v.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	v, err := NewValidator(ValidatorConfig{HMACSecret: "different-secret"})
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	token := signHMAC(t, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := v.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateSkipVerification(t *testing.T) {
	v, err := NewValidator(ValidatorConfig{SkipVerification: true})
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	// Signed with a secret the validator never sees; dev mode decodes anyway.
	token := signHMAC(t, jwt.MapClaims{"sub": "u-1"})
	claims, err := v.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims["sub"] != "u-1" {
		t.Errorf("sub = %v, want u-1", claims["sub"])
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"no scheme", "abc.def.ghi", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"empty", "", ""},
		{"scheme only", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenFromHeader(tt.header); got != tt.want {
				t.Errorf("TokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
