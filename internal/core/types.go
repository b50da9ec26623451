// Package core exposes the transactional tab service: operations over the
// persistent store wrapped with logging, metrics, tracing, and audit.
package core

import (
	"tabcore/internal/infra/persistence/memory"
	"tabcore/pkg/domain"
)

// Aliases keep service signatures concise while exposing domain types from
// this package.
type (
	// Tab is an alias of domain.Tab.
	Tab = domain.Tab
	// TabConfig is an alias of domain.TabConfig.
	TabConfig = domain.TabConfig
	// TabDraft is an alias of domain.TabDraft.
	TabDraft = domain.TabDraft
	// TabUpdate is an alias of domain.TabUpdate.
	TabUpdate = domain.TabUpdate
	// Direction is an alias of domain.Direction.
	Direction = domain.Direction
	// Change is an alias of domain.Change.
	Change = domain.Change
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView is an alias of domain.TransactionView.
	TransactionView = domain.TransactionView
	// PersistentStore is an alias of domain.PersistentStore.
	PersistentStore = domain.PersistentStore
	// MemoryStore is the canonical in-memory store implementation.
	MemoryStore = memory.Store
	// Snapshot is the serializable store state.
	Snapshot = memory.Snapshot
)

// NewMemoryStore constructs an in-memory store with the given rules engine.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	return memory.NewStore(engine)
}

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}
