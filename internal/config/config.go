package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// TeddyCloud contains connection settings for the TeddyCloud content server.
type TeddyCloud struct {
	URL     string `toml:"url"`
	APIBase string `toml:"api_base"`
	Timeout int    `toml:"timeout"`
}

// Volumes contains mounted volume paths for library and image data.
type Volumes struct {
	Enabled           bool   `toml:"enabled"`
	ConfigPath        string `toml:"config_path"`
	CustomImgPath     string `toml:"custom_img_path"`
	CustomImgJSONPath string `toml:"custom_img_json_path"`
	LibraryPath       string `toml:"library_path"`
}

// App contains user-facing application behavior flags.
type App struct {
	AutoParseTAF        bool     `toml:"auto_parse_taf"`
	ConfirmBeforeSave   bool     `toml:"confirm_before_save"`
	AutoReloadConfig    bool     `toml:"auto_reload_config"`
	DefaultLanguage     string   `toml:"default_language"`
	MaxImageSizeMB      int      `toml:"max_image_size_mb"`
	AllowedImageFormats []string `toml:"allowed_image_formats"`
	ShowHiddenFiles     bool     `toml:"show_hidden_files"`
	RecursiveScan       bool     `toml:"recursive_scan"`
	SelectedBox         string   `toml:"selected_box,omitempty"`
}

// Advanced contains parsing and cache tuning flags.
type Advanced struct {
	ParseCoverFromTAF bool   `toml:"parse_cover_from_taf"`
	ExtractTrackNames bool   `toml:"extract_track_names"`
	LogLevel          string `toml:"log_level"`
	CacheTAFMetadata  bool   `toml:"cache_taf_metadata"`
	CacheTTLSeconds   int    `toml:"cache_ttl_seconds"`
}

// Config encapsulates all configuration values for tonielib.
//
// Configuration sections by subsystem:
//   - TeddyCloud: content server connection and timeout
//   - Volumes: mounted data paths (library, config, custom images)
//   - App: wizard-selected behavior flags and language
//   - Advanced: TAF parsing and metadata cache tuning
//
// The setup wizard writes this document in full on every save; the loader
// never merges partial files. Always obtain settings through Load so
// downstream code receives normalized URLs and validated levels.
type Config struct {
	TeddyCloud TeddyCloud `toml:"teddycloud"`
	Volumes    Volumes    `toml:"volumes"`
	App        App        `toml:"app"`
	Advanced   Advanced   `toml:"advanced"`
}

// DefaultConfigPath is the fixed location of the persisted configuration.
// It lives on the mounted /config volume so saves survive redeployment of
// the application container.
const DefaultConfigPath = "/config/config.toml"

// Load locates and parses the configuration file. A missing file is not an
// error: the application must be able to start unconfigured so the setup
// wizard can run. The boolean result reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath
	}
	absolute, err := filepath.Abs(resolved)
	if err != nil {
		return nil, "", false, fmt.Errorf("resolve config path %q: %w", resolved, err)
	}

	exists := true
	file, err := os.Open(absolute)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		exists = false
	} else {
		defer file.Close()
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, absolute, exists, nil
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
