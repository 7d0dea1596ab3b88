package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/natours/booking-api/internal/core/domain"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, fixedNow(now))

	raw, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected subject: %s", claims.UserID)
	}
	if !claims.IssuedAt.Time.Equal(now.Truncate(time.Second)) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt.Time)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour).Truncate(time.Second)) {
		t.Fatalf("unexpected exp: %v", claims.ExpiresAt.Time)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Minute, fixedNow(now))
	raw, _ := issuer.Issue("user-1")

	later := NewTokenIssuer("secret", time.Minute, fixedNow(now.Add(2*time.Minute)))
	if _, err := later.Verify(raw); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	raw, _ := NewTokenIssuer("secret", time.Hour, nil).Issue("user-1")

	if _, err := NewTokenIssuer("other", time.Hour, nil).Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if _, err := NewTokenIssuer("secret", time.Hour, nil).Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	if _, err := NewTokenIssuer("secret", time.Hour, nil).Verify("not.a.token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCredentials_HashAndVerify(t *testing.T) {
	c := NewCredentials(4)

	hash, err := c.Hash("pass1234")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "pass1234" {
		t.Fatalf("expected hash to differ from plaintext")
	}
	if !c.Verify("pass1234", hash) {
		t.Fatalf("expected password to verify")
	}
	if c.Verify("pass12345", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if c.Verify("pass1234", "not-a-hash") {
		t.Fatalf("expected malformed hash to fail")
	}
}

func TestCredentials_CostOutOfRangeFallsBack(t *testing.T) {
	if c := NewCredentials(0); c.cost != 12 {
		t.Fatalf("expected default cost, got %d", c.cost)
	}
}
