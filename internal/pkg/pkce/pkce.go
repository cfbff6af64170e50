package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Method is the only code_challenge_method this relay emits.
const Method = "S256"

// Pair is a single-use PKCE verifier/challenge pair. The verifier stays on
// the server keyed by browser session; the challenge goes to the identity
// provider with the authorization request.
type Pair struct {
	Verifier  string
	Challenge string
}

// New generates a 256-bit random verifier (hex encoded) and its S256
// challenge per RFC 7636: base64url(SHA-256(verifier)), no padding.
func New() (*Pair, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	verifier := hex.EncodeToString(buf)
	return &Pair{Verifier: verifier, Challenge: Challenge(verifier)}, nil
}

// Challenge derives the S256 code challenge for a verifier.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// State generates a random state or nonce value for the authorization
// request, base64url encoded.
func State() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
