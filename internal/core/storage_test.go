package core

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("TABCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.AddTab(TabDraft{Title: "ephemeral"})
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestOpenPersistentStoreSQLite(t *testing.T) {
	t.Setenv("TABCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("TABCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenPersistentStore(NewDefaultRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.AddTab(TabDraft{Title: "durable"})
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("TABCORE_STORAGE_DRIVER", "tape")
	if _, err := OpenPersistentStore(NewDefaultRulesEngine()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
