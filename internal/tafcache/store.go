package tafcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS taf_metadata (
    path         TEXT PRIMARY KEY,
    size         INTEGER NOT NULL,
    mod_time     TEXT NOT NULL,
    data_length  INTEGER NOT NULL,
    encoded_at   TEXT NOT NULL,
    track_count  INTEGER NOT NULL,
    cached_at    TEXT NOT NULL
);
`

// Entry is a cached TAF header summary. Size and ModTime identify the file
// state the entry was computed from; a changed file invalidates it.
type Entry struct {
	Path       string
	Size       int64
	ModTime    time.Time
	DataLength uint64
	EncodedAt  time.Time
	TrackCount int
	CachedAt   time.Time
}

// Store caches parsed TAF headers in SQLite so repeated library scans do
// not re-read every file.
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration
}

// Open initializes or connects to the cache database at path. Entries older
// than ttl are treated as absent and removed by Prune.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path, ttl: ttl}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached entry for path when it matches the given file size
// and modification time and has not expired. A miss returns nil without
// error.
func (s *Store) Get(ctx context.Context, path string, size int64, modTime time.Time) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT path, size, mod_time, data_length, encoded_at, track_count, cached_at
         FROM taf_metadata WHERE path = ?`,
		path,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if entry.Size != size || !entry.ModTime.Equal(modTime.UTC()) {
		return nil, nil
	}
	if s.ttl > 0 && time.Since(entry.CachedAt) > s.ttl {
		return nil, nil
	}
	return entry, nil
}

// Put inserts or replaces the entry for its path.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	entry.CachedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO taf_metadata (path, size, mod_time, data_length, encoded_at, track_count, cached_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
             size = excluded.size,
             mod_time = excluded.mod_time,
             data_length = excluded.data_length,
             encoded_at = excluded.encoded_at,
             track_count = excluded.track_count,
             cached_at = excluded.cached_at`,
		entry.Path,
		entry.Size,
		entry.ModTime.UTC().Format(time.RFC3339Nano),
		int64(entry.DataLength),
		entry.EncodedAt.UTC().Format(time.RFC3339Nano),
		entry.TrackCount,
		entry.CachedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Prune removes expired entries and reports how many were deleted.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-s.ttl).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM taf_metadata WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry      Entry
		modTime    string
		encodedAt  string
		cachedAt   string
		dataLength int64
	)
	if err := row.Scan(&entry.Path, &entry.Size, &modTime, &dataLength, &encodedAt, &entry.TrackCount, &cachedAt); err != nil {
		return nil, err
	}
	entry.DataLength = uint64(dataLength)

	var err error
	if entry.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
		return nil, fmt.Errorf("parse mod_time: %w", err)
	}
	if entry.EncodedAt, err = time.Parse(time.RFC3339Nano, encodedAt); err != nil {
		return nil, fmt.Errorf("parse encoded_at: %w", err)
	}
	if entry.CachedAt, err = time.Parse(time.RFC3339Nano, cachedAt); err != nil {
		return nil, fmt.Errorf("parse cached_at: %w", err)
	}
	return &entry, nil
}
