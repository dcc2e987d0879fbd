package anchors

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParsedCertificate is a handle to a single parsed certificate. Close releases
// the handle; DER must not be used after Close returns.
type ParsedCertificate interface {
	DER() []byte
	Close() error
}

// CertificateParser parses a single PEM certificate file into a ParsedCertificate.
type CertificateParser interface {
	ParseFile(path string) (ParsedCertificate, error)
}

// PEMFileParser parses PEM certificate files through a FileSystem.
type PEMFileParser struct {
	fileSystem FileSystem
}

// NewPEMFileParser constructs a PEMFileParser.
func NewPEMFileParser(fileSystem FileSystem) PEMFileParser {
	return PEMFileParser{fileSystem: fileSystem}
}

// ParseFile reads path and decodes its first PEM certificate block.
func (parser PEMFileParser) ParseFile(path string) (ParsedCertificate, error) {
	content, readErr := parser.fileSystem.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read certificate file %s: %w", path, readErr)
	}
	block, _ := pem.Decode(content)
	if block == nil || block.Type != certificatePemBlockType {
		return nil, fmt.Errorf("no pem certificate in %s", path)
	}
	return &parsedCertificate{der: block.Bytes}, nil
}

type parsedCertificate struct {
	der []byte
}

func (parsed *parsedCertificate) DER() []byte {
	return parsed.der
}

func (parsed *parsedCertificate) Close() error {
	parsed.der = nil
	return nil
}

// CertificateFromDER converts raw DER bytes into a validated certificate.
func CertificateFromDER(der []byte) (*x509.Certificate, error) {
	certificate, parseErr := x509.ParseCertificate(der)
	if parseErr != nil {
		return nil, fmt.Errorf("parse der certificate: %w", parseErr)
	}
	return certificate, nil
}
