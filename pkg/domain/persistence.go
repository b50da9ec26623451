package domain

import "context"

// Transaction exposes the tab mutations that a persistence implementation
// must support within an atomic scope. A mutation that returns an error
// leaves the transactional state untouched.
type Transaction interface {
	Snapshot() TransactionView
	AddTab(TabDraft) (Tab, error)
	UpdateTab(TabUpdate) (Tab, error)
	RemoveTab(id string) error
	MoveTab(id string, index int) error
	SetActiveTab(id string) error
	// SwitchTab steps the active selection and reports the resulting active
	// id. It never fails: ineligibility degrades to a no-op (moved=false).
	SwitchTab(direction Direction) (active string, moved bool)
	CloseAllTabs()
	FindTab(id string) (Tab, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// external readers. Tabs are returned in display order.
type TransactionView interface {
	ListTabs() []Tab
	OrderedIDs() []string
	ActiveTabID() (string, bool)
	FindTab(id string) (Tab, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetTab(id string) (Tab, bool)
	ListTabs() []Tab
	OrderedIDs() []string
	ActiveTabID() (string, bool)
	ActiveTab() (Tab, bool)
}
