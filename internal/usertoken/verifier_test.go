package usertoken

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-please-rotate"

func mintToken(t *testing.T, secret, issuer, audience, subject string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifySubject(t *testing.T) {
	v, err := NewVerifier(Config{Secret: testSecret, Issuer: "iss", Audience: "aud"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token := mintToken(t, testSecret, "iss", "aud", "user-1", time.Minute)
	subject, err := v.VerifySubject(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", subject)
	}
}

func TestVerifySubjectRejectsBadTokens(t *testing.T) {
	v, err := NewVerifier(Config{Secret: testSecret, Issuer: "iss", Audience: "aud"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	cases := map[string]string{
		"wrong secret":   mintToken(t, "other-secret", "iss", "aud", "user-1", time.Minute),
		"wrong issuer":   mintToken(t, testSecret, "evil", "aud", "user-1", time.Minute),
		"wrong audience": mintToken(t, testSecret, "iss", "elsewhere", "user-1", time.Minute),
		"expired":        mintToken(t, testSecret, "iss", "aud", "user-1", -2*time.Minute),
		"empty subject":  mintToken(t, testSecret, "iss", "aud", "", time.Minute),
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		if _, err := v.VerifySubject(token); err == nil {
			t.Fatalf("%s: expected verification failure", name)
		}
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
