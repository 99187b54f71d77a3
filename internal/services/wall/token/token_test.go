package token

import (
	"testing"
	"time"

	"github.com/louisbranch/openwall/internal/platform/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuerForTest("test-secret", time.Hour, fixedClock(time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	raw, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	userID, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	issuer, err := NewIssuerForTest("test-secret", time.Hour, fixedClock(issued))
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	raw, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	issuer.now = fixedClock(issued.Add(2 * time.Hour))
	if _, err := issuer.Verify(raw); errors.CodeOf(err) != errors.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated for expired token, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	now := fixedClock(time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC))
	signer, err := NewIssuerForTest("secret-a", time.Hour, now)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	verifier, err := NewIssuerForTest("secret-b", time.Hour, now)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	raw, err := signer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := verifier.Verify(raw); errors.CodeOf(err) != errors.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated for wrong secret, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	for _, raw := range []string{"", "   ", "not.a.token"} {
		if _, err := issuer.Verify(raw); errors.CodeOf(err) != errors.CodeUnauthenticated {
			t.Fatalf("expected unauthenticated for %q, got %v", raw, err)
		}
	}
}

func TestIssueRequiresUserID(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if _, err := issuer.Issue("  "); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
