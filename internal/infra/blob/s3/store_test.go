package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"tabcore/internal/blob/core"
)

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()

	info, err := store.Put(ctx, "snapshots/one.json", strings.NewReader(`{"tabs":{}}`), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "snapshots/one.json" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := store.Put(ctx, "snapshots/one.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected create-only rejection")
	}

	got, rc, err := store.Get(ctx, "snapshots/one.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"tabs":{}}` {
		t.Fatalf("unexpected body %q", body)
	}
	if got.ContentType != "application/json" {
		t.Fatalf("unexpected content type: %+v", got)
	}

	head, err := store.Head(ctx, "snapshots/one.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != int64(len(body)) {
		t.Fatalf("unexpected head size: %+v", head)
	}
}

func TestMockStoreListAndDelete(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	for _, key := range []string{"snapshots/b", "snapshots/a", "other/x"} {
		if _, err := store.Put(ctx, key, strings.NewReader("data"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "snapshots/a" || infos[1].Key != "snapshots/b" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	existed, err := store.Delete(ctx, "snapshots/a")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "snapshots/a"); err == nil {
		t.Fatalf("expected head miss after delete")
	}
}

func TestMockStorePresign(t *testing.T) {
	store := NewMockForTests()
	url, err := store.PresignURL(context.Background(), "snapshots/a", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "snapshots/a") {
		t.Fatalf("unexpected presigned url %q", url)
	}
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket requirement")
	}
}
