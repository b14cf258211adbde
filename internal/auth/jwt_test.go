package auth

import (
	"errors"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService with a fixed secret so tests
// are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestIssue_ReturnsNonEmptyToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(Principal{ID: 1, Name: "alice"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Error("Issue() returned empty token")
	}

	// A JWT is header.payload.signature; sanity-check the shape.
	dots := 0
	for _, c := range token {
		if c == '.' {
			dots++
		}
	}
	if dots != 2 {
		t.Errorf("Issue() token doesn't look like a JWT (expected 2 dots, got %d)", dots)
	}
}

func TestVerify_RoundTripReturnsExactClaims(t *testing.T) {
	ts := newTestTokenService(t)

	want := Principal{ID: 42, Name: "alice", Role: "admin", Photo: "vehicles/cv37rs3pp9olc6atsptg.png"}

	token, err := ts.Issue(want)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if *got != want {
		t.Errorf("Verify() principal = %+v, want %+v", *got, want)
	}
}

func TestVerify_OmitsEmptyOptionalClaims(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue(Principal{ID: 7, Name: "bob"})

	got, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.Role != "" || got.Photo != "" {
		t.Errorf("Verify() optional claims = (%q, %q), want empty", got.Role, got.Photo)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.issueWithDuration(Principal{ID: 1, Name: "alice"}, -1*time.Second)
	if err != nil {
		t.Fatalf("issueWithDuration() error = %v", err)
	}

	if _, err := ts.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() = %v, want ErrInvalidToken for an expired token", err)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue(Principal{ID: 1, Name: "alice"})
	tampered := token[:len(token)-3] + "xxx"

	if _, err := ts.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() = %v, want ErrInvalidToken for a tampered token", err)
	}
}

func TestVerify_FailuresAreIndistinguishable(t *testing.T) {
	// Expired, tampered, malformed and wrong-secret tokens must all
	// collapse to the same error value so clients learn nothing from the
	// failure mode.
	ts := newTestTokenService(t)
	other, _ := NewTokenService("another-secret-16-chars-long!!!!")

	expired, _ := ts.issueWithDuration(Principal{ID: 1, Name: "a"}, -time.Minute)
	valid, _ := ts.Issue(Principal{ID: 1, Name: "a"})
	foreign, _ := other.Issue(Principal{ID: 1, Name: "a"})

	for name, tok := range map[string]string{
		"expired":      expired,
		"tampered":     valid[:len(valid)-3] + "xxx",
		"wrong secret": foreign,
		"garbage":      "not.a.jwt",
		"empty":        "",
	} {
		if _, err := ts.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%s) = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	token, _ := ts1.Issue(Principal{ID: 1, Name: "alice"})

	if _, err := ts2.Verify(token); err == nil {
		t.Fatal("Verify() should fail when using a different secret")
	}
}
