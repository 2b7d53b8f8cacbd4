package setup

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"tonielib/internal/config"
	"tonielib/internal/fileutil"
	"tonielib/internal/language"
	"tonielib/internal/logging"
)

// Input is the flat record the wizard UI submits on completion. Boolean
// fields that default to true are pointers so an omitted key keeps its
// default instead of collapsing to false. UILanguage only steers the wizard
// frontend and is not part of the persisted document.
type Input struct {
	TeddyCloudURL     string `json:"teddycloud_url"`
	CustomImgPath     string `json:"custom_img_path"`
	CustomImgJSONPath string `json:"custom_img_json_path"`
	UseSMB            bool   `json:"use_smb"`
	UILanguage        string `json:"ui_language"`
	DefaultLanguage   string `json:"default_language"`
	AutoParseTAF      *bool  `json:"auto_parse_taf"`
	SelectedBox       string `json:"selected_box"`
}

// Writer persists wizard submissions as the complete configuration document.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a writer targeting the given configuration path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	if strings.TrimSpace(path) == "" {
		path = config.DefaultConfigPath
	}
	return &Writer{
		path:   path,
		logger: logging.NewComponentLogger(logger, "setup-writer"),
	}
}

// Save expands input into the full four-section document and replaces the
// configuration file atomically. It fails only on marshal or I/O errors;
// there is no partial write and no merge with previous content.
func (w *Writer) Save(input Input) error {
	doc := BuildConfig(input)

	raw, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if err := fileutil.WriteFileAtomic(w.path, raw, 0o644); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	w.logger.Info("setup configuration saved",
		logging.String("path", w.path),
		logging.String("teddycloud_url", doc.TeddyCloud.URL),
		logging.Bool("volumes_enabled", doc.Volumes.Enabled))
	return nil
}

// Path returns the target configuration path.
func (w *Writer) Path() string {
	return w.path
}

// BuildConfig expands a wizard submission into the persisted document.
// Every key the startup loader expects is covered: fields the wizard does
// not expose come from the repository defaults, selecting a network share
// disables direct volume access, and an absent Toniebox selection omits the
// selected_box key entirely.
func BuildConfig(input Input) config.Config {
	cfg := config.Default()

	cfg.TeddyCloud.URL = strings.TrimRight(strings.TrimSpace(input.TeddyCloudURL), "/")
	cfg.Volumes.Enabled = !input.UseSMB
	cfg.Volumes.CustomImgPath = strings.TrimSpace(input.CustomImgPath)
	cfg.Volumes.CustomImgJSONPath = strings.TrimSpace(input.CustomImgJSONPath)

	cfg.App.DefaultLanguage = language.Normalize(input.DefaultLanguage, cfg.App.DefaultLanguage)
	if input.AutoParseTAF != nil {
		cfg.App.AutoParseTAF = *input.AutoParseTAF
	}
	cfg.App.SelectedBox = strings.TrimSpace(input.SelectedBox)

	return cfg
}
