package util

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestHashUserKey(t *testing.T) {
	got := HashUserKey("42")
	if got != HashUserKey("42") {
		t.Fatalf("expected a stable hash")
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if _, err := hex.DecodeString(got); err != nil {
		t.Fatalf("expected hex, got %q", got)
	}
	if got == HashUserKey("43") {
		t.Fatalf("expected distinct users to hash differently")
	}

	plain := sha256.Sum256([]byte("42"))
	if got == hex.EncodeToString(plain[:]) {
		t.Fatalf("expected a domain-separated hash")
	}
}
