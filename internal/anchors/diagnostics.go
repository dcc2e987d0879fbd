package anchors

// Advisory conditions recorded during discovery. These never abort the load;
// they exist so callers can inspect what was skipped without scraping logs.
const (
	ConditionStoreFileUnreadable = "store-file-unreadable"
	ConditionStoreFileMalformed  = "store-file-malformed"
	ConditionCertificateSkipped  = "certificate-skipped"
	ConditionCertificateRejected = "certificate-rejected"
	ConditionNoDiscoverySource   = "no-discovery-source"
	ConditionBundleProbeFailed   = "bundle-probe-failed"
)

// Diagnostic describes one advisory condition observed while loading.
type Diagnostic struct {
	Condition string
	Path      string
	Cause     error
}

// LoadResult carries the populated store and the advisory diagnostics
// accumulated while producing it.
type LoadResult struct {
	Store       *TrustAnchorStore
	Diagnostics []Diagnostic
}

func (result *LoadResult) addDiagnostic(condition string, path string, cause error) {
	result.Diagnostics = append(result.Diagnostics, Diagnostic{Condition: condition, Path: path, Cause: cause})
}
