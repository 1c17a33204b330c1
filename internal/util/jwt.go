package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a hosted-auth access token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func parsePublicKey(pemKey string) (any, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// ParseECDSAPublicKey parses a PEM-encoded ECDSA public key
func ParseECDSAPublicKey(pemKey string) (*ecdsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not ECDSA")
	}
	return ecdsaPub, nil
}

// ParseRSAPublicKey parses a PEM-encoded RSA public key
func ParseRSAPublicKey(pemKey string) (*rsa.PublicKey, error) {
	pub, err := parsePublicKey(pemKey)
	if err != nil {
		return nil, err
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return rsaPub, nil
}

var (
	hmacMethods         = []string{"HS256", "HS384", "HS512"}
	rsaMethods          = []string{"RS256", "RS384", "RS512"}
	ecdsaMethods        = []string{"ES256", "ES384", "ES512"}
	errEmptyKeyMaterial = errors.New("jwt key material is empty")
)

// JWTVerifier checks session tokens against one configured key. The accepted
// algorithms follow from the key itself: a PEM public key allows only the
// matching RS* or ES* family, anything else is an HMAC secret allowing only HS*.
// The token's own alg header never selects the key.
type JWTVerifier struct {
	key     any
	methods []string
}

// NewJWTVerifier parses the key material once.
func NewJWTVerifier(keyMaterial string) (*JWTVerifier, error) {
	if strings.TrimSpace(keyMaterial) == "" {
		return nil, errEmptyKeyMaterial
	}
	if !strings.Contains(keyMaterial, "-----BEGIN") {
		return &JWTVerifier{key: []byte(keyMaterial), methods: hmacMethods}, nil
	}

	pub, err := parsePublicKey(keyMaterial)
	if err != nil {
		return nil, err
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return &JWTVerifier{key: k, methods: rsaMethods}, nil
	case *ecdsa.PublicKey:
		return &JWTVerifier{key: k, methods: ecdsaMethods}, nil
	}
	return nil, fmt.Errorf("unsupported public key type %T", pub)
}

// Validate verifies the token signature and expiry and returns its claims.
func (v *JWTVerifier) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods(v.methods), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ValidateJWT verifies a session token against either a shared secret or a
// PEM public key and returns its claims.
func ValidateJWT(tokenString string, keyMaterial string) (*Claims, error) {
	v, err := NewJWTVerifier(keyMaterial)
	if err != nil {
		return nil, err
	}
	return v.Validate(tokenString)
}
