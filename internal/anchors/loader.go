package anchors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tyemirov/trustanchor/pkg/logging"
)

const (
	overrideBundleRelativePath = "lib/security/anchors-override"
	defaultBundleRelativePath  = "lib/security/anchors"
	platformCADirectoryName    = "etc/security/cacerts"

	logFieldPath  = "path"
	logFieldCount = "count"
)

// ErrCADirectoryUnreadable reports a failed listing of the platform CA directory.
var ErrCADirectoryUnreadable = errors.New("platform ca directory unreadable")

// Loader discovers trust anchors from configured and platform-conventional locations.
type Loader struct {
	fileSystem     FileSystem
	parser         CertificateParser
	loggingService *logging.Service
}

// NewLoader constructs a Loader.
func NewLoader(fileSystem FileSystem, parser CertificateParser, loggingService *logging.Service) Loader {
	return Loader{
		fileSystem:     fileSystem,
		parser:         parser,
		loggingService: loggingService,
	}
}

// Load produces a populated trust anchor store following strict precedence:
// an explicit store bypasses discovery; an explicit store path suppresses
// platform discovery; otherwise runtime-home bundles and the platform CA
// directory both contribute. Missing or malformed sources are advisory and
// recorded as diagnostics; an unsupported store format and a denied CA
// directory listing are fatal.
func (loader Loader) Load(ctx context.Context, config DiscoveryConfig) (LoadResult, error) {
	if config.ExplicitStore != nil {
		return LoadResult{Store: config.ExplicitStore}, nil
	}

	format, formatErr := loader.resolveStoreFormat(config)
	if formatErr != nil {
		loader.loggingService.Error("unsupported trust store format", formatErr, logging.String("format", config.StoreFormat))
		return LoadResult{}, formatErr
	}

	result := LoadResult{Store: NewTrustAnchorStore()}

	if config.StorePath != "" {
		loader.loggingService.Info("loading trust anchors from configured store", logging.String(logFieldPath, config.StorePath))
		loader.mergeBundle(ctx, &result, format, config.StorePath, config.StorePassword)
		return result, nil
	}

	sourceFound := false

	if config.RuntimeHome != "" {
		loader.loggingService.Info("probing runtime home for trust anchor bundles", logging.String(logFieldPath, config.RuntimeHome))
		probed := loader.loadRuntimeBundles(ctx, &result, format, config)
		sourceFound = sourceFound || probed
	}

	if config.PlatformRoot != "" {
		scanErr := loader.scanPlatformCADirectory(ctx, &result, config)
		if scanErr != nil {
			return LoadResult{}, scanErr
		}
		sourceFound = true
	}

	if !sourceFound {
		loader.loggingService.Info("no system trust anchors found, sessions requiring peer authentication will fail")
		result.addDiagnostic(ConditionNoDiscoverySource, "", nil)
	}

	return result, nil
}

func (loader Loader) resolveStoreFormat(config DiscoveryConfig) (StoreFormat, error) {
	if config.StoreFormat != "" {
		return FormatByName(config.StoreFormat)
	}
	if config.PlatformRoot != "" {
		loader.loggingService.Info("alternate runtime detected, using pem store format")
		return FormatByName(FormatNamePEM)
	}
	return FormatByName(FormatNamePKCS12)
}

// mergeBundle decodes the store blob at path and merges its certificates.
// Every failure is advisory: the store may simply stay empty.
func (loader Loader) mergeBundle(ctx context.Context, result *LoadResult, format StoreFormat, path string, password string) bool {
	select {
	case <-ctx.Done():
		loader.loggingService.Error("trust store decode aborted", ctx.Err(), logging.String(logFieldPath, path))
		result.addDiagnostic(ConditionStoreFileUnreadable, path, ctx.Err())
		return false
	default:
	}

	reader, openErr := loader.fileSystem.Open(path)
	if openErr != nil {
		loader.loggingService.Error("cannot open trust store file", openErr, logging.String(logFieldPath, path))
		result.addDiagnostic(ConditionStoreFileUnreadable, path, openErr)
		return false
	}
	defer func() {
		_ = reader.Close()
	}()

	certificates, decodeErr := format.DecodeStream(reader, password)
	if decodeErr != nil {
		loader.loggingService.Error("cannot decode trust store file", decodeErr, logging.String(logFieldPath, path))
		result.addDiagnostic(ConditionStoreFileMalformed, path, decodeErr)
		return false
	}

	result.Store.MergeCertificates(certificates)
	loader.loggingService.Info("loaded trust anchors", logging.String(logFieldPath, path), logging.Int(logFieldCount, len(certificates)))
	return true
}

// loadRuntimeBundles probes the override bundle first, then the default
// bundle. Both contribute when present. Reports whether any bundle existed.
func (loader Loader) loadRuntimeBundles(ctx context.Context, result *LoadResult, format StoreFormat, config DiscoveryConfig) bool {
	bundleFound := false
	for _, relativePath := range []string{overrideBundleRelativePath, defaultBundleRelativePath} {
		bundlePath := filepath.Join(config.RuntimeHome, relativePath)
		exists, existsErr := loader.fileSystem.FileExists(bundlePath)
		if existsErr != nil {
			loader.loggingService.Error("cannot probe trust anchor bundle", existsErr, logging.String(logFieldPath, bundlePath))
			result.addDiagnostic(ConditionBundleProbeFailed, bundlePath, existsErr)
			continue
		}
		if !exists {
			continue
		}
		bundleFound = true
		loader.mergeBundle(ctx, result, format, bundlePath, config.StorePassword)
	}
	return bundleFound
}

// scanPlatformCADirectory loads every parsable PEM certificate beneath the
// platform CA directory under a synthetic alias. Per-file failures are
// skipped; a failed directory listing is fatal.
func (loader Loader) scanPlatformCADirectory(ctx context.Context, result *LoadResult, config DiscoveryConfig) error {
	caDirectory := filepath.Join(config.PlatformRoot, platformCADirectoryName)

	select {
	case <-ctx.Done():
		return fmt.Errorf("scan platform ca directory: %w", ctx.Err())
	default:
	}

	fileNames, listErr := loader.fileSystem.ListDirectory(caDirectory)
	if listErr != nil {
		loader.loggingService.Error("cannot list platform ca directory", listErr, logging.String(logFieldPath, caDirectory))
		return fmt.Errorf("%w: %w", ErrCADirectoryUnreadable, listErr)
	}
	loader.loggingService.Info("scanning platform ca directory", logging.String(logFieldPath, caDirectory), logging.Int(logFieldCount, len(fileNames)))

	aliasCounter := 0
	for _, fileName := range fileNames {
		certificatePath := filepath.Join(caDirectory, fileName)

		parsed, parseErr := loader.parser.ParseFile(certificatePath)
		if parseErr != nil {
			loader.loggingService.Info("skipped unparsable certificate", logging.String(logFieldPath, certificatePath))
			result.addDiagnostic(ConditionCertificateSkipped, certificatePath, parseErr)
			continue
		}
		der := append([]byte{}, parsed.DER()...)
		_ = parsed.Close()

		certificate, convertErr := CertificateFromDER(der)
		if convertErr != nil {
			loader.loggingService.Error("cannot convert certificate", convertErr, logging.String(logFieldPath, certificatePath))
			result.addDiagnostic(ConditionCertificateRejected, certificatePath, convertErr)
			continue
		}

		alias := fmt.Sprintf("alias%d", aliasCounter)
		if insertErr := result.Store.SetCertificateEntry(alias, certificate); insertErr != nil {
			loader.loggingService.Error("cannot insert certificate entry", insertErr, logging.String(logFieldPath, certificatePath))
			result.addDiagnostic(ConditionCertificateRejected, certificatePath, insertErr)
			continue
		}
		aliasCounter++
	}

	loader.loggingService.Info("loaded platform ca certificates", logging.Int(logFieldCount, aliasCounter))
	return nil
}
