package utils

import (
	"strings"
	"testing"
)

func TestGenerateSecureTokenShape(t *testing.T) {
	tok, err := GenerateSecureToken()
	if err != nil {
		t.Fatalf("GenerateSecureToken failed: %v", err)
	}
	// 32 bytes base64url without padding.
	if len(tok) != 43 {
		t.Fatalf("token length = %d, want 43", len(tok))
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, r := range tok {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("token contains non-URL-safe rune %q", r)
		}
	}
}

func TestGenerateSecureTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := GenerateSecureToken()
		if err != nil {
			t.Fatalf("GenerateSecureToken failed: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[tok] = true
	}
}

func TestGenerateTokenPairDistinct(t *testing.T) {
	confirmation, cancellation, err := GenerateTokenPair()
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if confirmation == "" || cancellation == "" {
		t.Fatal("empty secret")
	}
	if confirmation == cancellation {
		t.Fatal("pair must be distinct")
	}
}
