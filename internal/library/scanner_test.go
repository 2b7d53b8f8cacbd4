package library

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tonielib/internal/config"
	"tonielib/internal/tafcache"
)

func writeTAF(t *testing.T, path string, tracks int) {
	t.Helper()

	var header []byte
	appendVarintField := func(field int, value uint64) {
		header = binary.AppendUvarint(header, uint64(field)<<3)
		header = binary.AppendUvarint(header, value)
	}
	appendBytesField := func(field int, payload []byte) {
		header = binary.AppendUvarint(header, uint64(field)<<3|2)
		header = binary.AppendUvarint(header, uint64(len(payload)))
		header = append(header, payload...)
	}

	appendBytesField(1, []byte{0xde, 0xad, 0xbe, 0xef})
	appendVarintField(2, 1500)
	appendVarintField(3, uint64(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Unix()))
	var pages []byte
	for i := 0; i < tracks; i++ {
		pages = binary.AppendUvarint(pages, uint64(i*100))
	}
	appendBytesField(4, pages)

	data := make([]byte, 4, 4+len(header))
	binary.BigEndian.PutUint32(data, uint32(len(header)))
	data = append(data, header...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write TAF file %s: %v", path, err)
	}
}

func scanConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Volumes.LibraryPath = t.TempDir()
	cfg.Advanced.CacheTAFMetadata = false
	return &cfg
}

func TestScanFindsTAFFiles(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.Volumes.LibraryPath
	writeTAF(t, filepath.Join(root, "alpha.taf"), 3)
	writeTAF(t, filepath.Join(root, "nested", "beta.taf"), 1)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write decoy: %v", err)
	}

	result, err := NewScanner(cfg, nil, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("found %d items, want 2", len(result.Items))
	}
	if result.Items[0].Path != filepath.Join(root, "alpha.taf") {
		t.Errorf("first item = %s, want alpha.taf first", result.Items[0].Path)
	}
	if result.Items[0].TrackCount != 3 {
		t.Errorf("alpha track count = %d, want 3", result.Items[0].TrackCount)
	}
	if result.Items[0].DataLength != 1500 {
		t.Errorf("alpha data length = %d, want 1500", result.Items[0].DataLength)
	}
	if result.Items[0].FromCache {
		t.Error("first scan should not report cache hits")
	}
}

func TestScanNonRecursiveStaysAtTopLevel(t *testing.T) {
	cfg := scanConfig(t)
	cfg.App.RecursiveScan = false
	root := cfg.Volumes.LibraryPath
	writeTAF(t, filepath.Join(root, "alpha.taf"), 1)
	writeTAF(t, filepath.Join(root, "nested", "beta.taf"), 1)

	result, err := NewScanner(cfg, nil, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("found %d items, want 1", len(result.Items))
	}
}

func TestScanSkipsHiddenFilesByDefault(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.Volumes.LibraryPath
	writeTAF(t, filepath.Join(root, ".hidden.taf"), 1)
	writeTAF(t, filepath.Join(root, ".stash", "tucked.taf"), 1)
	writeTAF(t, filepath.Join(root, "visible.taf"), 1)

	result, err := NewScanner(cfg, nil, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("found %d items, want 1", len(result.Items))
	}

	cfg.App.ShowHiddenFiles = true
	result, err = NewScanner(cfg, nil, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("found %d items with hidden files enabled, want 3", len(result.Items))
	}
}

func TestScanCountsUnparseableFiles(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.Volumes.LibraryPath
	writeTAF(t, filepath.Join(root, "good.taf"), 2)
	if err := os.WriteFile(filepath.Join(root, "bad.taf"), []byte{0x00}, 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	result, err := NewScanner(cfg, nil, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Errorf("found %d items, want 1", len(result.Items))
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
}

func TestScanUsesCacheOnSecondPass(t *testing.T) {
	cfg := scanConfig(t)
	cfg.Advanced.CacheTAFMetadata = true
	root := cfg.Volumes.LibraryPath
	writeTAF(t, filepath.Join(root, "alpha.taf"), 4)

	store, err := tafcache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer store.Close()

	scanner := NewScanner(cfg, store, nil)
	ctx := context.Background()

	first, err := scanner.Scan(ctx)
	if err != nil {
		t.Fatalf("first Scan returned error: %v", err)
	}
	if first.CacheHits != 0 {
		t.Errorf("first scan cache hits = %d, want 0", first.CacheHits)
	}

	second, err := scanner.Scan(ctx)
	if err != nil {
		t.Fatalf("second Scan returned error: %v", err)
	}
	if second.CacheHits != 1 {
		t.Errorf("second scan cache hits = %d, want 1", second.CacheHits)
	}
	if len(second.Items) != 1 || !second.Items[0].FromCache {
		t.Fatalf("expected single cached item, got %+v", second.Items)
	}
	if second.Items[0].TrackCount != 4 {
		t.Errorf("cached track count = %d, want 4", second.Items[0].TrackCount)
	}
}

func TestScanMissingRootFails(t *testing.T) {
	cfg := scanConfig(t)
	cfg.Volumes.LibraryPath = filepath.Join(cfg.Volumes.LibraryPath, "gone")

	if _, err := NewScanner(cfg, nil, nil).Scan(context.Background()); err == nil {
		t.Fatal("expected error for missing library root")
	}
}
