package util

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJoinCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		require.NoError(t, err)
		require.Len(t, code, JoinCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(joinCodeAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeJoinCode("  abc234\n"))
}

func TestPKCE(t *testing.T) {
	verifier, err := NewPKCEVerifier()
	require.NoError(t, err)
	assert.Len(t, verifier, 43)

	// RFC 7636 appendix B
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		PKCEChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func TestIsAuthError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("JWT expired"), true},
		{errors.New("invalid Session"), true},
		{errors.New("AuthApiError: bad code"), true},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsAuthError(tc.err), "%v", tc.err)
	}
}
