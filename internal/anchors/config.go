package anchors

// DiscoveryConfig is an immutable snapshot of the discovery inputs. It is
// populated once at the process boundary; the loader never reads the process
// environment itself.
type DiscoveryConfig struct {
	// ExplicitStore, when non-nil, is returned verbatim and skips discovery.
	ExplicitStore *TrustAnchorStore
	// StoreFormat names the backing store format. Empty selects the platform default.
	StoreFormat string
	// StorePath points at an explicit trust store file. When set, platform
	// discovery is skipped entirely.
	StorePath string
	// StorePassword protects the explicit store blob. May be empty.
	StorePassword string
	// RuntimeHome is the runtime installation root (variable A). When set,
	// conventional bundle locations beneath it are probed.
	RuntimeHome string
	// PlatformRoot is the operating system root (variable B). When set, it
	// signals the alternate runtime and its CA directory is scanned.
	PlatformRoot string
}
