package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"tabcore/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	info, err := store.Put(ctx, "a/key", strings.NewReader("payload"), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, "a/key", strings.NewReader("other"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only rejection")
	}

	got, rc, err := store.Get(ctx, "a/key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || got.ContentType != "text/plain" {
		t.Fatalf("unexpected get: body=%q info=%+v", body, got)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected head miss")
	}

	existed, err := store.Delete(ctx, "a/key")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	existed, _ = store.Delete(ctx, "a/key")
	if existed {
		t.Fatalf("second delete must report absence")
	}
}

func TestMemoryStoreListOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"p/2", "p/1", "q/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "p/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "p/1" || infos[1].Key != "p/2" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
	if _, err := store.PresignURL(ctx, "p/1", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
