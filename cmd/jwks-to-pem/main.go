// Command jwks-to-pem prints the hosted auth signing key as a PEM public key,
// ready to be used as SUPABASE_JWT_SECRET for RS*/ES* tokens.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type JWKS struct {
	Keys []JWK `json:"keys"`
}

type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	// EC
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	// RSA
	N string `json:"n"`
	E string `json:"e"`
}

func main() {
	_ = godotenv.Load()

	defaultURL := "http://127.0.0.1:54321"
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		defaultURL = v
	}
	baseURL := flag.String("url", defaultURL, "hosted auth base URL")
	kid := flag.String("kid", "", "key id to export (default: first signing key)")
	flag.Parse()

	jwks, err := fetchJWKS(strings.TrimRight(*baseURL, "/") + "/auth/v1/.well-known/jwks.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching JWKS: %v\n", err)
		os.Exit(1)
	}
	key, err := pickKey(jwks, *kid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	pemBytes, err := jwkToPEM(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting key %q: %v\n", key.Kid, err)
		os.Exit(1)
	}
	fmt.Print(string(pemBytes))
}

func fetchJWKS(url string) (*JWKS, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var jwks JWKS
	if err := json.Unmarshal(body, &jwks); err != nil {
		return nil, fmt.Errorf("parsing JWKS: %w", err)
	}
	return &jwks, nil
}

func pickKey(jwks *JWKS, kid string) (JWK, error) {
	for _, k := range jwks.Keys {
		if kid == "" && (k.Use == "" || k.Use == "sig") {
			return k, nil
		}
		if kid != "" && k.Kid == kid {
			return k, nil
		}
	}
	if kid != "" {
		return JWK{}, fmt.Errorf("no key with kid %q in JWKS", kid)
	}
	return JWK{}, errors.New("no signing keys found in JWKS")
}

func decodeInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

func jwkToPEM(key JWK) ([]byte, error) {
	var pub any
	switch key.Kty {
	case "EC":
		var curve elliptic.Curve
		switch key.Crv {
		case "P-256":
			curve = elliptic.P256()
		case "P-384":
			curve = elliptic.P384()
		case "P-521":
			curve = elliptic.P521()
		default:
			return nil, fmt.Errorf("unsupported curve %q", key.Crv)
		}
		x, err := decodeInt(key.X)
		if err != nil {
			return nil, fmt.Errorf("decoding X coordinate: %w", err)
		}
		y, err := decodeInt(key.Y)
		if err != nil {
			return nil, fmt.Errorf("decoding Y coordinate: %w", err)
		}
		pub = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	case "RSA":
		n, err := decodeInt(key.N)
		if err != nil {
			return nil, fmt.Errorf("decoding modulus: %w", err)
		}
		e, err := decodeInt(key.E)
		if err != nil {
			return nil, fmt.Errorf("decoding exponent: %w", err)
		}
		if !e.IsInt64() || e.Int64() > 1<<31-1 {
			return nil, errors.New("exponent out of range")
		}
		pub = &rsa.PublicKey{N: n, E: int(e.Int64())}
	default:
		return nil, fmt.Errorf("unsupported key type %q", key.Kty)
	}

	derBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes}), nil
}
