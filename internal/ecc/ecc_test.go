package ecc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"testing"
)

func generateKeyPairDER(t *testing.T) ([]byte, []byte) {
	t.Helper()
	privateKey, keyErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if keyErr != nil {
		t.Fatalf("generate key: %v", keyErr)
	}
	privateKeyDER, privateErr := x509.MarshalECPrivateKey(privateKey)
	if privateErr != nil {
		t.Fatalf("marshal private key: %v", privateErr)
	}
	publicKeyDER, publicErr := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if publicErr != nil {
		t.Fatalf("marshal public key: %v", publicErr)
	}
	return privateKeyDER, publicKeyDER
}

func TestSignDigestRoundTrip(t *testing.T) {
	privateKeyDER, publicKeyDER := generateKeyPairDER(t)
	provider := NewStandardProvider(rand.Reader)
	digest := sha256.Sum256([]byte("payload"))

	signature, signErr := provider.SignDigest(digest[:], privateKeyDER)
	if signErr != nil {
		t.Fatalf("sign digest: %v", signErr)
	}

	valid, verifyErr := provider.VerifyDigest(signature, digest[:], publicKeyDER)
	if verifyErr != nil {
		t.Fatalf("verify digest: %v", verifyErr)
	}
	if !valid {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyDigestRejectsTamperedDigest(t *testing.T) {
	privateKeyDER, publicKeyDER := generateKeyPairDER(t)
	provider := NewStandardProvider(rand.Reader)
	digest := sha256.Sum256([]byte("payload"))
	tampered := sha256.Sum256([]byte("tampered"))

	signature, signErr := provider.SignDigest(digest[:], privateKeyDER)
	if signErr != nil {
		t.Fatalf("sign digest: %v", signErr)
	}

	valid, verifyErr := provider.VerifyDigest(signature, tampered[:], publicKeyDER)
	if verifyErr != nil {
		t.Fatalf("verify digest: %v", verifyErr)
	}
	if valid {
		t.Fatalf("expected tampered digest to fail verification")
	}
}

func TestSignDigestRejectsMalformedPrivateKey(t *testing.T) {
	provider := NewStandardProvider(rand.Reader)
	digest := sha256.Sum256([]byte("payload"))
	if _, err := provider.SignDigest(digest[:], []byte("not a key")); err == nil {
		t.Fatalf("expected malformed private key to be rejected")
	}
}

func TestVerifyDigestRejectsNonECKey(t *testing.T) {
	rsaKey, keyErr := rsa.GenerateKey(rand.Reader, 2048)
	if keyErr != nil {
		t.Fatalf("generate rsa key: %v", keyErr)
	}
	rsaPublicDER, marshalErr := x509.MarshalPKIXPublicKey(&rsaKey.PublicKey)
	if marshalErr != nil {
		t.Fatalf("marshal rsa public key: %v", marshalErr)
	}

	provider := NewStandardProvider(rand.Reader)
	digest := sha256.Sum256([]byte("payload"))
	if _, err := provider.VerifyDigest([]byte{0x30}, digest[:], rsaPublicDER); err == nil {
		t.Fatalf("expected non-ec public key to be rejected")
	}
}
