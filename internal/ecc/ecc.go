// Package ecc is a thin seam over the elliptic-curve signing engine. Keys and
// signatures cross the boundary as DER bytes; the math lives in crypto/ecdsa.
package ecc

import (
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"
	"io"
)

// Provider signs and verifies digests using DER-encoded elliptic-curve keys.
type Provider interface {
	SignDigest(digest []byte, privateKeyDER []byte) ([]byte, error)
	VerifyDigest(signature []byte, digest []byte, publicKeyDER []byte) (bool, error)
}

// StandardProvider implements Provider on the standard crypto engine.
type StandardProvider struct {
	randomnessSource io.Reader
}

// NewStandardProvider constructs a StandardProvider.
func NewStandardProvider(randomnessSource io.Reader) StandardProvider {
	return StandardProvider{randomnessSource: randomnessSource}
}

// SignDigest signs digest with the SEC 1 DER-encoded private key, returning
// an ASN.1 DER signature.
func (provider StandardProvider) SignDigest(digest []byte, privateKeyDER []byte) ([]byte, error) {
	privateKey, parseErr := x509.ParseECPrivateKey(privateKeyDER)
	if parseErr != nil {
		return nil, fmt.Errorf("parse ec private key: %w", parseErr)
	}
	signature, signErr := ecdsa.SignASN1(provider.randomnessSource, privateKey, digest)
	if signErr != nil {
		return nil, fmt.Errorf("sign digest: %w", signErr)
	}
	return signature, nil
}

// VerifyDigest reports whether signature covers digest under the PKIX
// DER-encoded public key.
func (provider StandardProvider) VerifyDigest(signature []byte, digest []byte, publicKeyDER []byte) (bool, error) {
	parsedKey, parseErr := x509.ParsePKIXPublicKey(publicKeyDER)
	if parseErr != nil {
		return false, fmt.Errorf("parse public key: %w", parseErr)
	}
	publicKey, ok := parsedKey.(*ecdsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("public key is %T, not an ecdsa key", parsedKey)
	}
	return ecdsa.VerifyASN1(publicKey, digest, signature), nil
}
