package tafcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "taf_metadata.db"), ttl)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestPutThenGetRoundTrip(t *testing.T) {
	store := newStore(t, time.Hour)
	ctx := context.Background()

	modTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{
		Path:       "/data/library/story.taf",
		Size:       4096,
		ModTime:    modTime,
		DataLength: 3500,
		EncodedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TrackCount: 7,
	}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, entry.Path, entry.Size, modTime)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit, got miss")
	}
	if got.DataLength != entry.DataLength {
		t.Errorf("DataLength = %d, want %d", got.DataLength, entry.DataLength)
	}
	if got.TrackCount != entry.TrackCount {
		t.Errorf("TrackCount = %d, want %d", got.TrackCount, entry.TrackCount)
	}
	if !got.EncodedAt.Equal(entry.EncodedAt) {
		t.Errorf("EncodedAt = %v, want %v", got.EncodedAt, entry.EncodedAt)
	}
}

func TestGetMissesWhenAbsent(t *testing.T) {
	store := newStore(t, time.Hour)

	got, err := store.Get(context.Background(), "/data/library/missing.taf", 10, time.Now())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss for absent path, got %+v", got)
	}
}

func TestGetMissesWhenFileChanged(t *testing.T) {
	store := newStore(t, time.Hour)
	ctx := context.Background()

	modTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{Path: "/data/library/story.taf", Size: 4096, ModTime: modTime, TrackCount: 2}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if got, err := store.Get(ctx, entry.Path, 8192, modTime); err != nil || got != nil {
		t.Errorf("Get with changed size = (%+v, %v), want miss", got, err)
	}
	if got, err := store.Get(ctx, entry.Path, 4096, modTime.Add(time.Minute)); err != nil || got != nil {
		t.Errorf("Get with changed mod time = (%+v, %v), want miss", got, err)
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	store := newStore(t, time.Hour)
	ctx := context.Background()

	modTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{Path: "/data/library/story.taf", Size: 4096, ModTime: modTime, TrackCount: 2}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	entry.Size = 8192
	entry.ModTime = modTime.Add(time.Minute)
	entry.TrackCount = 9
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	got, err := store.Get(ctx, entry.Path, 8192, entry.ModTime)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected hit for updated entry")
	}
	if got.TrackCount != 9 {
		t.Errorf("TrackCount = %d, want 9", got.TrackCount)
	}
}

func TestExpiredEntryMissesAndPrunes(t *testing.T) {
	store := newStore(t, time.Millisecond)
	ctx := context.Background()

	modTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{Path: "/data/library/story.taf", Size: 4096, ModTime: modTime}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	got, err := store.Get(ctx, entry.Path, entry.Size, modTime)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired entry to miss, got %+v", got)
	}

	deleted, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune deleted %d rows, want 1", deleted)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	store := newStore(t, 0)
	ctx := context.Background()

	modTime := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{Path: "/data/library/story.taf", Size: 4096, ModTime: modTime}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, entry.Path, entry.Size, modTime)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected hit with zero TTL")
	}

	deleted, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune deleted %d rows, want 0", deleted)
	}
}
