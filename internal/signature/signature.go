// Package signature signs and verifies comment payloads with HMAC-SHA256 (JWA "HS256").
//
// A signature is the unpadded base64url encoding of the MAC computed over the exact payload
// bytes. Callers must verify against the bytes they received, never a re-serialization.
package signature

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMismatch is returned when a signature does not match the payload and secret.
var ErrMismatch = errors.New("signature mismatch")

// Sign returns the HS256 signature of payload under secret.
func Sign(payload, secret []byte) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(string(payload), secret)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks signature against payload and secret. The MAC comparison is constant time.
func Verify(payload []byte, signature string, secret []byte) error {
	if len(secret) == 0 || signature == "" {
		return ErrMismatch
	}
	sig, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(signature, "="))
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrMismatch)
	}
	if err := jwt.SigningMethodHS256.Verify(string(payload), sig, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrMismatch, err)
	}
	return nil
}
