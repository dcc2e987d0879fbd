package trust

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/tyemirov/trustanchor/internal/anchors"
)

type testAuthority struct {
	certificate *x509.Certificate
	privateKey  *ecdsa.PrivateKey
}

func newTestAuthority(t *testing.T, commonName string) testAuthority {
	t.Helper()
	privateKey, keyErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if keyErr != nil {
		t.Fatalf("generate authority key: %v", keyErr)
	}
	template := x509.Certificate{
		SerialNumber:          newSerialNumber(t),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(48 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	derBytes, createErr := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if createErr != nil {
		t.Fatalf("create authority certificate: %v", createErr)
	}
	certificate, parseErr := x509.ParseCertificate(derBytes)
	if parseErr != nil {
		t.Fatalf("parse authority certificate: %v", parseErr)
	}
	return testAuthority{certificate: certificate, privateKey: privateKey}
}

func (authority testAuthority) issueLeaf(t *testing.T, commonName string) *x509.Certificate {
	t.Helper()
	leafKey, keyErr := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if keyErr != nil {
		t.Fatalf("generate leaf key: %v", keyErr)
	}
	template := x509.Certificate{
		SerialNumber: newSerialNumber(t),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	derBytes, createErr := x509.CreateCertificate(rand.Reader, &template, authority.certificate, &leafKey.PublicKey, authority.privateKey)
	if createErr != nil {
		t.Fatalf("create leaf certificate: %v", createErr)
	}
	leaf, parseErr := x509.ParseCertificate(derBytes)
	if parseErr != nil {
		t.Fatalf("parse leaf certificate: %v", parseErr)
	}
	return leaf
}

func newSerialNumber(t *testing.T) *big.Int {
	t.Helper()
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("generate serial number: %v", err)
	}
	return serial
}

func TestManagerVerifiesChainRootedAtLoadedAnchor(t *testing.T) {
	authority := newTestAuthority(t, "Managed Test Root")
	store := anchors.NewTrustAnchorStore()
	if err := store.SetCertificateEntry("alias0", authority.certificate); err != nil {
		t.Fatalf("insert authority: %v", err)
	}

	manager := NewManager(store)
	if manager.AnchorCount() != 1 {
		t.Fatalf("expected 1 anchor, got %d", manager.AnchorCount())
	}

	leaf := authority.issueLeaf(t, "service.internal")
	if err := manager.Verify(leaf, nil, time.Now()); err != nil {
		t.Fatalf("verify leaf against loaded anchor: %v", err)
	}
}

func TestManagerRejectsChainWithoutMatchingAnchor(t *testing.T) {
	trustedAuthority := newTestAuthority(t, "Trusted Root")
	strangerAuthority := newTestAuthority(t, "Stranger Root")

	store := anchors.NewTrustAnchorStore()
	if err := store.SetCertificateEntry("alias0", trustedAuthority.certificate); err != nil {
		t.Fatalf("insert authority: %v", err)
	}

	manager := NewManager(store)
	strangerLeaf := strangerAuthority.issueLeaf(t, "service.internal")
	if err := manager.Verify(strangerLeaf, nil, time.Now()); err == nil {
		t.Fatalf("expected verification to fail for an unknown authority")
	}
}

func TestEmptyStoreYieldsManagerWithNoRoots(t *testing.T) {
	manager := NewManager(anchors.NewTrustAnchorStore())
	if manager.AnchorCount() != 0 {
		t.Fatalf("expected 0 anchors, got %d", manager.AnchorCount())
	}
	tlsConfiguration := manager.ClientTLSConfig()
	if tlsConfiguration.RootCAs == nil {
		t.Fatalf("expected an empty root pool, not a nil one")
	}

	authority := newTestAuthority(t, "Any Root")
	leaf := authority.issueLeaf(t, "service.internal")
	if err := manager.Verify(leaf, nil, time.Now()); err == nil {
		t.Fatalf("expected verification to fail with zero anchors")
	}
}
