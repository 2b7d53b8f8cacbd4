package setup

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDataRoot is the mount point provisioning places TeddyCloud data
// under.
const DefaultDataRoot = "/data"

const catalogFileName = "tonies.custom.json"

// Detection describes what local data access the detector found.
type Detection struct {
	VolumeAvailable bool     `json:"volume_available"`
	VolumePath      string   `json:"volume_path,omitempty"`
	TAFFilesFound   int      `json:"taf_files_found"`
	ToniesFound     int      `json:"tonies_found"`
	ImagePaths      []string `json:"image_paths"`
}

// Detector inspects a data mount for the TeddyCloud directory layout.
type Detector struct {
	Root string
}

// NewDetector returns a detector rooted at the fixed data mount.
func NewDetector() Detector {
	return Detector{Root: DefaultDataRoot}
}

// Detect probes the data mount. It is read-only, idempotent, and never
// fails: an absent or partial layout yields a negative result, and each
// sub-check (file count, catalog parse, image directory probe) degrades to
// its empty default independently of the others.
func (d Detector) Detect() Detection {
	result := Detection{ImagePaths: []string{}}

	root := d.Root
	if root == "" {
		root = DefaultDataRoot
	}
	if !isDir(root) {
		return result
	}

	configDir := filepath.Join(root, "config")
	libraryDir := filepath.Join(root, "library")
	if !isDir(configDir) || !isDir(libraryDir) {
		// Partial structure is not a usable volume.
		return result
	}

	result.VolumeAvailable = true
	result.VolumePath = root
	result.TAFFilesFound = countTAFFiles(libraryDir)
	result.ToniesFound = countCatalogEntries(filepath.Join(configDir, catalogFileName))

	for _, candidate := range []string{
		filepath.Join(libraryDir, "own", "pics"),
		filepath.Join(root, "www", "custom_img"),
	} {
		if isDir(candidate) {
			result.ImagePaths = append(result.ImagePaths, candidate)
		}
	}
	return result
}

func countTAFFiles(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable subtrees instead of aborting the count.
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".taf" {
			count++
		}
		return nil
	})
	return count
}

// countCatalogEntries reads the custom tonies catalog and returns the number
// of entries. A missing file, malformed JSON, or a non-list document all
// count as zero.
func countCatalogEntries(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0
	}
	return len(entries)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
