package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_VerifierIs256BitHex(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	assert.Len(t, p.Verifier, 64)
	_, err = hex.DecodeString(p.Verifier)
	assert.NoError(t, err)
}

func TestNew_ChallengeIsS256OfVerifier(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	sum := sha256.Sum256([]byte(p.Verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), p.Challenge)
	// base64url, no padding
	assert.NotContains(t, p.Challenge, "=")
	assert.NotContains(t, p.Challenge, "+")
	assert.NotContains(t, p.Challenge, "/")
}

func TestChallenge_KnownVector(t *testing.T) {
	// RFC 7636 appendix B verifier.
	assert.Equal(t,
		"E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func TestNew_PairsAreUnique(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)
	assert.NotEqual(t, a.Verifier, b.Verifier)
}

func TestState_RandomAndURLSafe(t *testing.T) {
	s1, err := State()
	require.NoError(t, err)
	s2, err := State()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	_, err = base64.RawURLEncoding.DecodeString(s1)
	assert.NoError(t, err)
}
