package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"tabcore/internal/blob"
)

// snapshotPrefix namespaces archived snapshots inside the blob store.
const snapshotPrefix = "snapshots/"

// SnapshotArchiver writes durable snapshots of the tab store to a blob
// backend under timestamped, immutable keys. Keys sort lexicographically by
// capture time, so the last listed key is the newest archive.
type SnapshotArchiver struct {
	blobs blob.Store
	clock Clock
}

// NewSnapshotArchiver constructs an archiver over the given blob store.
func NewSnapshotArchiver(store blob.Store, opts ...ServiceOption) *SnapshotArchiver {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &SnapshotArchiver{blobs: store, clock: options.clock}
}

func snapshotKey(ts int64) string {
	return fmt.Sprintf("%s%020d.json", snapshotPrefix, ts)
}

// Archive serializes the snapshot and stores it under a fresh timestamped
// key. Existing archives are never overwritten.
func (a *SnapshotArchiver) Archive(ctx context.Context, snap Snapshot) (blob.Info, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := snapshotKey(a.clock.Now().UTC().UnixNano())
	info, err := a.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"tab_count": strconv.Itoa(len(snap.Tabs))},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("archive snapshot: %w", err)
	}
	return info, nil
}

// RestoreLatest loads the newest archived snapshot that decodes cleanly,
// scanning backwards past corrupt archives. It returns ok=false when no
// usable archive exists.
func (a *SnapshotArchiver) RestoreLatest(ctx context.Context) (Snapshot, bool, error) {
	infos, err := a.blobs.List(ctx, snapshotPrefix)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("list snapshots: %w", err)
	}
	for i := len(infos) - 1; i >= 0; i-- {
		_, rc, err := a.blobs.Get(ctx, infos[i].Key)
		if err != nil {
			continue
		}
		payload, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			continue
		}
		return snap, true, nil
	}
	return Snapshot{}, false, nil
}

// Prune deletes all but the newest keep archives. A non-positive keep leaves
// the archive untouched.
func (a *SnapshotArchiver) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	infos, err := a.blobs.List(ctx, snapshotPrefix)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) <= keep {
		return nil
	}
	for _, info := range infos[:len(infos)-keep] {
		if _, err := a.blobs.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("prune %s: %w", info.Key, err)
		}
	}
	return nil
}
