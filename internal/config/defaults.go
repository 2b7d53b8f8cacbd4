package config

// DefaultTeddyCloudURL is the factory placeholder written by container
// provisioning. The readiness evaluator treats a config that still carries
// this value as potentially unconfigured.
const DefaultTeddyCloudURL = "http://docker"

const (
	defaultAPIBase         = "/api"
	defaultTimeoutSeconds  = 30
	defaultConfigPath      = "/data/config"
	defaultLibraryPath     = "/data/library"
	defaultLanguage        = "de-de"
	defaultMaxImageSizeMB  = 5
	defaultLogLevel        = "INFO"
	defaultCacheTTLSeconds = 300
)

func defaultImageFormats() []string {
	return []string{"jpg", "jpeg", "png", "webp"}
}

// Default returns a Config populated with repository defaults. Every key the
// startup loader reads is covered here; the setup writer overlays operator
// choices on top of this value so the persisted document is always complete.
func Default() Config {
	return Config{
		TeddyCloud: TeddyCloud{
			URL:     DefaultTeddyCloudURL,
			APIBase: defaultAPIBase,
			Timeout: defaultTimeoutSeconds,
		},
		Volumes: Volumes{
			Enabled:     true,
			ConfigPath:  defaultConfigPath,
			LibraryPath: defaultLibraryPath,
		},
		App: App{
			AutoParseTAF:        true,
			ConfirmBeforeSave:   true,
			AutoReloadConfig:    true,
			DefaultLanguage:     defaultLanguage,
			MaxImageSizeMB:      defaultMaxImageSizeMB,
			AllowedImageFormats: defaultImageFormats(),
			ShowHiddenFiles:     false,
			RecursiveScan:       true,
		},
		Advanced: Advanced{
			ParseCoverFromTAF: true,
			ExtractTrackNames: true,
			LogLevel:          defaultLogLevel,
			CacheTAFMetadata:  true,
			CacheTTLSeconds:   defaultCacheTTLSeconds,
		},
	}
}
