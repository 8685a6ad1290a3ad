package identity

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

// Verify reports whether sigB64 is a valid Ed25519 signature over the
// canonical form of body, made by the key in publicKeyPEM.
//
// Every failure mode (malformed JSON, malformed base64, malformed PEM, wrong
// key type, signature mismatch) maps to false. Nothing here panics or
// produces an outcome that could be mistaken for success upstream, and the
// function has no side effects.
func Verify(body []byte, sigB64 string, publicKeyPEM string) bool {
	canonical, err := CanonicalJSON(body)
	if err != nil {
		return false
	}

	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false
	}

	return ed25519.Verify(pub, canonical, sig)
}

// ParsePublicKey decodes a PEM-encoded (PKIX) Ed25519 public key.
func ParsePublicKey(pemStr string) (ed25519.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an Ed25519 public key: %T", key)
	}
	return pub, nil
}
