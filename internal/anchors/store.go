package anchors

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

const certificatePemBlockType = "CERTIFICATE"

// TrustAnchorStore is a mutable collection of trust anchors keyed by a unique alias.
type TrustAnchorStore struct {
	certificatesByAlias map[string]*x509.Certificate
	aliasOrder          []string
}

// NewTrustAnchorStore constructs an empty TrustAnchorStore.
func NewTrustAnchorStore() *TrustAnchorStore {
	return &TrustAnchorStore{certificatesByAlias: map[string]*x509.Certificate{}}
}

// SetCertificateEntry inserts a certificate under the provided alias.
func (store *TrustAnchorStore) SetCertificateEntry(alias string, certificate *x509.Certificate) error {
	if alias == "" {
		return errors.New("alias is required")
	}
	if certificate == nil {
		return errors.New("certificate is required")
	}
	if _, exists := store.certificatesByAlias[alias]; exists {
		return fmt.Errorf("alias %s already present", alias)
	}
	store.certificatesByAlias[alias] = certificate
	store.aliasOrder = append(store.aliasOrder, alias)
	return nil
}

// Certificate returns the certificate stored under alias, or nil when absent.
func (store *TrustAnchorStore) Certificate(alias string) *x509.Certificate {
	return store.certificatesByAlias[alias]
}

// Aliases returns every alias in insertion order.
func (store *TrustAnchorStore) Aliases() []string {
	return append([]string{}, store.aliasOrder...)
}

// Len returns the number of stored trust anchors.
func (store *TrustAnchorStore) Len() int {
	return len(store.aliasOrder)
}

// MergeCertificates inserts every certificate, deriving aliases from the
// certificate subject and suffixing a counter when the alias is taken.
func (store *TrustAnchorStore) MergeCertificates(certificates []*x509.Certificate) {
	for _, certificate := range certificates {
		baseAlias := subjectAlias(certificate)
		alias := baseAlias
		for suffix := 2; store.certificatesByAlias[alias] != nil; suffix++ {
			alias = fmt.Sprintf("%s-%d", baseAlias, suffix)
		}
		_ = store.SetCertificateEntry(alias, certificate)
	}
}

// EncodePEM renders every stored certificate as a concatenated PEM bundle.
func (store *TrustAnchorStore) EncodePEM() []byte {
	var builder strings.Builder
	for _, alias := range store.aliasOrder {
		block := pem.Block{Type: certificatePemBlockType, Bytes: store.certificatesByAlias[alias].Raw}
		builder.Write(pem.EncodeToMemory(&block))
	}
	return []byte(builder.String())
}

func subjectAlias(certificate *x509.Certificate) string {
	commonName := strings.TrimSpace(certificate.Subject.CommonName)
	if commonName != "" {
		return commonName
	}
	return fmt.Sprintf("serial-%s", certificate.SerialNumber.Text(16))
}
