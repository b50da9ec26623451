package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"tabcore/internal/infra/persistence/memory"
	"tabcore/internal/infra/persistence/postgres/testutil"
	"tabcore/pkg/domain"
)

func boolPtr(v bool) *bool { return &v }

func TestNewStoreEnsuresStateTableAndLoadsSnapshot(t *testing.T) {
	db, conn := testutil.NewStubDB()
	seed := memory.Snapshot{
		Tabs: map[string]domain.Tab{
			"t1": {
				Base:   domain.Base{ID: "t1"},
				Title:  "restored",
				Config: domain.TabConfig{Closable: true, Reorderable: true, Persist: true, MaxTabs: 10, MaxContentSize: 1000},
			},
		},
		Order: []string{"t1"},
	}
	tabs, err := json.Marshal(seed.Tabs)
	if err != nil {
		t.Fatalf("marshal tabs: %v", err)
	}
	order, err := json.Marshal(seed.Order)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	conn.Buckets["tabs"] = tabs
	conn.Buckets["order"] = order

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(store.ListTabs()); got != 1 {
		t.Fatalf("expected 1 restored tab, got %d", got)
	}
	if _, ok := store.ActiveTabID(); ok {
		t.Fatalf("restored store must have no active tab")
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsReducedState(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var keepID string
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		kept, err := tx.AddTab(domain.TabDraft{Title: "keep", Config: &domain.TabConfigPatch{Persist: boolPtr(true)}})
		if err != nil {
			return err
		}
		keepID = kept.ID
		_, err = tx.AddTab(domain.TabDraft{Title: "scratch"})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	payload, ok := conn.Buckets["tabs"]
	if !ok {
		t.Fatalf("expected tabs bucket to be written")
	}
	var persisted map[string]domain.Tab
	if err := json.Unmarshal(payload, &persisted); err != nil {
		t.Fatalf("decode persisted tabs: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected only the durable tab persisted, got %d", len(persisted))
	}
	if _, ok := persisted[keepID]; !ok {
		t.Fatalf("expected tab %q in snapshot, got %v", keepID, persisted)
	}

	var order []string
	if err := json.Unmarshal(conn.Buckets["order"], &order); err != nil {
		t.Fatalf("decode persisted order: %v", err)
	}
	if len(order) != 1 || order[0] != keepID {
		t.Fatalf("unexpected persisted order: %v", order)
	}
}

func TestRunInTransactionSurfacesPersistFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	conn.FailBegin = true
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AddTab(domain.TabDraft{Title: "doomed"})
		return err
	})
	if err == nil {
		t.Fatalf("expected persist failure to surface")
	}
}

func TestNewStoreFailsWhenPingFails(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err == nil {
		t.Fatalf("expected ping failure")
	}
}
