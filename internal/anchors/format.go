package anchors

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"strings"

	"software.sslmate.com/src/go-pkcs12"
)

const (
	// FormatNamePEM identifies the concatenated PEM bundle format.
	FormatNamePEM = "pem"
	// FormatNamePKCS12 identifies the password-protected PKCS#12 trust store format.
	FormatNamePKCS12 = "pkcs12"
)

// ErrUnsupportedStoreFormat reports a store format name with no registered decoder.
var ErrUnsupportedStoreFormat = errors.New("unsupported trust store format")

// StoreFormat decodes a trust store blob into its certificates.
type StoreFormat interface {
	Name() string
	DecodeStream(reader io.Reader, password string) ([]*x509.Certificate, error)
}

// FormatByName resolves a registered StoreFormat by its normalized name.
func FormatByName(name string) (StoreFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatNamePEM:
		return pemStoreFormat{}, nil
	case FormatNamePKCS12, "p12":
		return pkcs12StoreFormat{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStoreFormat, name)
	}
}

type pemStoreFormat struct{}

func (pemStoreFormat) Name() string {
	return FormatNamePEM
}

// DecodeStream parses every CERTIFICATE block in the stream. The password is
// ignored, PEM bundles are not encrypted.
func (pemStoreFormat) DecodeStream(reader io.Reader, password string) ([]*x509.Certificate, error) {
	content, readErr := io.ReadAll(reader)
	if readErr != nil {
		return nil, fmt.Errorf("read pem bundle: %w", readErr)
	}
	var certificates []*x509.Certificate
	remaining := content
	for {
		block, rest := pem.Decode(remaining)
		if block == nil {
			break
		}
		remaining = rest
		if block.Type != certificatePemBlockType {
			continue
		}
		certificate, parseErr := x509.ParseCertificate(block.Bytes)
		if parseErr != nil {
			return nil, fmt.Errorf("parse pem certificate: %w", parseErr)
		}
		certificates = append(certificates, certificate)
	}
	if len(certificates) == 0 {
		return nil, errors.New("pem bundle contains no certificates")
	}
	return certificates, nil
}

type pkcs12StoreFormat struct{}

func (pkcs12StoreFormat) Name() string {
	return FormatNamePKCS12
}

// DecodeStream decodes a PKCS#12 trust store protected by password.
func (pkcs12StoreFormat) DecodeStream(reader io.Reader, password string) ([]*x509.Certificate, error) {
	content, readErr := io.ReadAll(reader)
	if readErr != nil {
		return nil, fmt.Errorf("read pkcs12 store: %w", readErr)
	}
	certificates, decodeErr := pkcs12.DecodeTrustStore(content, password)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode pkcs12 store: %w", decodeErr)
	}
	return certificates, nil
}
