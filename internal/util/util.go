package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"strings"
)

// joinCodeAlphabet drops 0/O and 1/I/L so codes can be read aloud.
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a class join code
const JoinCodeLength = 6

// GenerateJoinCode returns a random class join code.
func GenerateJoinCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := 0; i < JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(joinCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeJoinCode trims and upper-cases user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewPKCEVerifier returns a 43 character code verifier.
func NewPKCEVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// PKCEChallenge derives the S256 code challenge for a verifier.
func PKCEChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// IsAuthError reports whether an upstream error means the session is no
// longer valid.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"jwt", "session", "auth"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
