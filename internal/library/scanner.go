package library

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tonielib/internal/config"
	"tonielib/internal/logging"
	"tonielib/internal/taf"
	"tonielib/internal/tafcache"
)

const tafExtension = ".taf"

// Item describes one TAF file found during a scan.
type Item struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
	DataLength uint64    `json:"data_length"`
	EncodedAt  time.Time `json:"encoded_at"`
	TrackCount int       `json:"track_count"`
	FromCache  bool      `json:"from_cache"`
}

// Result summarizes a completed library scan.
type Result struct {
	Root      string `json:"root"`
	Items     []Item `json:"items"`
	Failed    int    `json:"failed"`
	CacheHits int    `json:"cache_hits"`
}

// Scanner walks the library volume and parses TAF headers, consulting the
// metadata cache when one is configured.
type Scanner struct {
	cfg    *config.Config
	cache  *tafcache.Store
	logger *slog.Logger
}

// NewScanner builds a scanner for cfg. cache may be nil, in which case every
// file is parsed directly.
func NewScanner(cfg *config.Config, cache *tafcache.Store, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:    cfg,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "library-scanner"),
	}
}

// Scan walks the configured library path and returns one item per readable
// TAF file. Unparseable files are counted but do not abort the scan.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	root := s.cfg.Volumes.LibraryPath
	result := &Result{Root: root, Items: []Item{}}

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable path",
				logging.String("path", path),
				logging.Error(err))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if !s.cfg.App.RecursiveScan {
				return fs.SkipDir
			}
			if s.hidden(entry.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if s.hidden(entry.Name()) || strings.ToLower(filepath.Ext(entry.Name())) != tafExtension {
			return nil
		}

		item, hit, itemErr := s.inspect(ctx, path, entry)
		if itemErr != nil {
			result.Failed++
			s.logger.Warn("failed to read TAF header",
				logging.String("path", path),
				logging.Error(itemErr))
			return nil
		}
		if hit {
			result.CacheHits++
		}
		result.Items = append(result.Items, item)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].Path < result.Items[j].Path
	})

	s.logger.Info("library scan complete",
		logging.String("root", root),
		logging.Int("files", len(result.Items)),
		logging.Int("failed", result.Failed),
		logging.Int("cache_hits", result.CacheHits))
	return result, nil
}

func (s *Scanner) hidden(name string) bool {
	return !s.cfg.App.ShowHiddenFiles && strings.HasPrefix(name, ".")
}

func (s *Scanner) inspect(ctx context.Context, path string, entry fs.DirEntry) (Item, bool, error) {
	info, err := entry.Info()
	if err != nil {
		return Item{}, false, err
	}

	item := Item{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}

	useCache := s.cache != nil && s.cfg.Advanced.CacheTAFMetadata
	if useCache {
		cached, cacheErr := s.cache.Get(ctx, path, item.Size, item.ModTime)
		if cacheErr != nil {
			s.logger.Warn("cache lookup failed",
				logging.String("path", path),
				logging.Error(cacheErr))
		} else if cached != nil {
			item.DataLength = cached.DataLength
			item.EncodedAt = cached.EncodedAt
			item.TrackCount = cached.TrackCount
			item.FromCache = true
			return item, true, nil
		}
	}

	header, err := taf.ParseFile(path)
	if err != nil {
		return Item{}, false, err
	}
	item.DataLength = header.DataLength
	item.EncodedAt = header.Timestamp
	item.TrackCount = header.TrackCount()

	if useCache {
		putErr := s.cache.Put(ctx, tafcache.Entry{
			Path:       path,
			Size:       item.Size,
			ModTime:    item.ModTime,
			DataLength: item.DataLength,
			EncodedAt:  item.EncodedAt,
			TrackCount: item.TrackCount,
		})
		if putErr != nil {
			s.logger.Warn("cache store failed",
				logging.String("path", path),
				logging.Error(putErr))
		}
	}
	return item, false, nil
}
