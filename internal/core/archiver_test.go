package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"tabcore/internal/blob"
	"tabcore/pkg/domain"
)

func archiveSnapshot(id, title string) Snapshot {
	return Snapshot{
		Tabs: map[string]Tab{
			id: {Base: domain.Base{ID: id}, Title: title, Config: domain.DefaultTabConfig()},
		},
		Order: []string{id},
	}
}

func TestArchiveAndRestoreLatest(t *testing.T) {
	store := blob.NewMemory()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	archiver := NewSnapshotArchiver(store, WithClock(ClockFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})))
	ctx := context.Background()

	if _, err := archiver.Archive(ctx, archiveSnapshot("t1", "oldest")); err != nil {
		t.Fatalf("archive: %v", err)
	}
	info, err := archiver.Archive(ctx, archiveSnapshot("t2", "newest"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.HasPrefix(info.Key, "snapshots/") || info.ContentType != "application/json" {
		t.Fatalf("unexpected archive info: %+v", info)
	}

	snap, ok, err := archiver.RestoreLatest(ctx)
	if err != nil || !ok {
		t.Fatalf("restore: ok=%v err=%v", ok, err)
	}
	if _, found := snap.Tabs["t2"]; !found {
		t.Fatalf("expected newest snapshot restored, got %+v", snap)
	}
}

func TestRestoreLatestEmptyArchive(t *testing.T) {
	archiver := NewSnapshotArchiver(blob.NewMemory())
	_, ok, err := archiver.RestoreLatest(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if ok {
		t.Fatalf("expected no restorable snapshot")
	}
}

func TestRestoreLatestSkipsCorruptArchives(t *testing.T) {
	store := blob.NewMemory()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := ClockFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	archiver := NewSnapshotArchiver(store, WithClock(clock))
	ctx := context.Background()

	if _, err := archiver.Archive(ctx, archiveSnapshot("t1", "good")); err != nil {
		t.Fatalf("archive: %v", err)
	}
	// A later, corrupt archive must be skipped in favor of the older good one.
	corruptKey := "snapshots/99999999999999999999.json"
	if _, err := store.Put(ctx, corruptKey, strings.NewReader("{not json"), blob.PutOptions{}); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}

	snap, ok, err := archiver.RestoreLatest(ctx)
	if err != nil || !ok {
		t.Fatalf("restore: ok=%v err=%v", ok, err)
	}
	if _, found := snap.Tabs["t1"]; !found {
		t.Fatalf("expected good snapshot restored, got %+v", snap)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store := blob.NewMemory()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	archiver := NewSnapshotArchiver(store, WithClock(ClockFunc(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})))
	ctx := context.Background()

	for i, title := range []string{"one", "two", "three"} {
		if _, err := archiver.Archive(ctx, archiveSnapshot("t"+title, title)); err != nil {
			t.Fatalf("archive %d: %v", i, err)
		}
	}
	if err := archiver.Prune(ctx, 1); err != nil {
		t.Fatalf("prune: %v", err)
	}
	infos, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 surviving archive, got %d", len(infos))
	}
	snap, ok, err := archiver.RestoreLatest(ctx)
	if err != nil || !ok {
		t.Fatalf("restore: ok=%v err=%v", ok, err)
	}
	if _, found := snap.Tabs["tthree"]; !found {
		t.Fatalf("expected newest archive to survive, got %+v", snap)
	}

	if err := archiver.Prune(ctx, 0); err != nil {
		t.Fatalf("prune keep<=0 must be a no-op: %v", err)
	}
}
