package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	tokens := New("secret")

	token, err := tokens.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "alice")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := New("secret").Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := New("other").Parse(token); err == nil {
		t.Error("Parse() should reject a token signed with another secret")
	}
}

func TestParse_Expired(t *testing.T) {
	tokens := New("secret")
	token, err := tokens.Issue("alice", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if _, err := tokens.Parse(token); err == nil {
		t.Error("Parse() should reject an expired token")
	}
}

func TestDisabled(t *testing.T) {
	tokens := New("")
	if tokens.Enabled() {
		t.Error("Enabled() should be false without a secret")
	}
	if _, err := tokens.Issue("alice", time.Hour); err == nil {
		t.Error("Issue() should fail without a secret")
	}
}
