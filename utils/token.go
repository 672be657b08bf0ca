package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// secretTokenBytes yields 256 bits of entropy per token.
const secretTokenBytes = 32

// GenerateSecureToken returns an opaque URL-safe random string used as an
// appointment confirmation/cancellation secret or an email action token.
// Possession of the string is the sole credential, so it must never be
// derived from anything guessable.
func GenerateSecureToken() (string, error) {
	raw := make([]byte, secretTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// GenerateTokenPair returns two distinct secrets for a new appointment.
// The distinctness check guards against a broken entropy source rather
// than a realistic collision.
func GenerateTokenPair() (confirmation string, cancellation string, err error) {
	confirmation, err = GenerateSecureToken()
	if err != nil {
		return "", "", err
	}
	cancellation, err = GenerateSecureToken()
	if err != nil {
		return "", "", err
	}
	if confirmation == cancellation {
		return "", "", fmt.Errorf("token generator produced identical secrets")
	}
	return confirmation, cancellation, nil
}
