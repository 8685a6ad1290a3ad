package identity

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// Sign produces a base64 Ed25519 signature over the canonical form of body.
// Consumers embedding the orchestrator use this to sign outgoing envelopes;
// tests use it to exercise the verifier.
func Sign(body []byte, priv ed25519.PrivateKey) (string, error) {
	canonical, err := CanonicalJSON(body)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(priv, canonical)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// EncodePublicKey renders an Ed25519 public key as PKIX PEM, the format
// stored in agent identity records.
func EncodePublicKey(pub ed25519.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
