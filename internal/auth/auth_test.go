package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("skrivnost123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "skrivnost123" {
		t.Fatal("hash equals the plaintext password")
	}
	if err := CheckPassword(hash, "skrivnost123"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "napacno geslo"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong password error = %v, want ErrWrongPassword", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("kratko"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.Issue("mojca", true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "mojca" || !claims.Admin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	m, _ := NewManager("test-secret", time.Hour)
	other, _ := NewManager("other-secret", time.Hour)

	token, err := other.Issue("mojca", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign-key token accepted: %v", err)
	}
	if _, err := m.Verify("ni.zeton.sploh"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token accepted: %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewManager("test-secret", time.Minute)

	issued := time.Now()
	m.now = func() time.Time { return issued }
	token, err := m.Issue("mojca", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestShouldRenew(t *testing.T) {
	m, _ := NewManager("test-secret", 72*time.Hour)

	issued := time.Now()
	m.now = func() time.Time { return issued }
	token, _ := m.Issue("mojca", false)
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if m.ShouldRenew(claims) {
		t.Fatal("fresh token should not renew")
	}
	m.now = func() time.Time { return issued.Add(49 * time.Hour) }
	if !m.ShouldRenew(claims) {
		t.Fatal("token with <24h left should renew")
	}
}

func TestNewManagerRejectsEmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); !errors.Is(err, ErrEmptySigningSecret) {
		t.Fatalf("err = %v, want ErrEmptySigningSecret", err)
	}
}
