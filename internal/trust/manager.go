// Package trust hands a populated trust anchor store to the certificate
// verification engine. Chain building and signature checks are delegated to
// crypto/x509; nothing here fabricates trust.
package trust

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/tyemirov/trustanchor/internal/anchors"
)

// Manager exposes a loaded trust anchor set to TLS and verification callers.
type Manager struct {
	anchorCount int
	pool        *x509.CertPool
}

// NewManager takes ownership of the store and builds the verification pool.
func NewManager(store *anchors.TrustAnchorStore) *Manager {
	pool := x509.NewCertPool()
	aliases := store.Aliases()
	for _, alias := range aliases {
		pool.AddCert(store.Certificate(alias))
	}
	return &Manager{anchorCount: len(aliases), pool: pool}
}

// AnchorCount returns the number of trust anchors backing the manager.
func (manager *Manager) AnchorCount() int {
	return manager.anchorCount
}

// Pool returns the certificate pool holding every trust anchor.
func (manager *Manager) Pool() *x509.CertPool {
	return manager.pool
}

// ClientTLSConfig returns a TLS configuration rooted at the loaded anchors.
// With zero anchors every peer-authenticated handshake fails at verification
// time rather than here.
func (manager *Manager) ClientTLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    manager.pool,
		MinVersion: tls.VersionTLS12,
	}
}

// Verify checks that leaf chains to one of the loaded anchors at the
// provided time, delegating chain construction to crypto/x509.
func (manager *Manager) Verify(leaf *x509.Certificate, intermediates []*x509.Certificate, currentTime time.Time) error {
	intermediatePool := x509.NewCertPool()
	for _, intermediate := range intermediates {
		intermediatePool.AddCert(intermediate)
	}
	options := x509.VerifyOptions{
		Roots:         manager.pool,
		Intermediates: intermediatePool,
		CurrentTime:   currentTime,
	}
	if _, err := leaf.Verify(options); err != nil {
		return fmt.Errorf("verify certificate chain: %w", err)
	}
	return nil
}
