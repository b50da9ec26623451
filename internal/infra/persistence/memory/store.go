// Package memory provides the canonical in-memory implementation of the tab
// persistence store. Durable backends embed it and snapshot its state.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"tabcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Tab aliases domain.Tab for in-memory persistence operations.
	Tab = domain.Tab
	// TabConfig aliases domain.TabConfig.
	TabConfig = domain.TabConfig
	// TabDraft aliases domain.TabDraft.
	TabDraft = domain.TabDraft
	// TabUpdate aliases domain.TabUpdate.
	TabUpdate = domain.TabUpdate
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

// memoryState is the entities/order/active triple plus the ordering mode.
// order is always a permutation of the tab map's key set; active is "" or a
// key present in tabs. explicitOrder flips once a move has been applied, at
// which point title-sorted maintenance stops.
type memoryState struct {
	tabs          map[string]Tab
	order         []string
	active        string
	explicitOrder bool
}

// Snapshot captures a point-in-time serializable view of the store state.
// The active selection is deliberately absent: snapshots never resurrect it.
type Snapshot struct {
	Tabs  map[string]Tab `json:"tabs"`
	Order []string       `json:"order"`
}

func newMemoryState() memoryState {
	return memoryState{tabs: make(map[string]Tab)}
}

func cloneTab(t Tab) Tab { return t }

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		tabs:          make(map[string]Tab, len(s.tabs)),
		order:         append([]string(nil), s.order...),
		active:        s.active,
		explicitOrder: s.explicitOrder,
	}
	for k, v := range s.tabs {
		cloned.tabs[k] = cloneTab(v)
	}
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snap := Snapshot{
		Tabs:  make(map[string]Tab, len(state.tabs)),
		Order: append([]string(nil), state.order...),
	}
	for k, v := range state.tabs {
		snap.Tabs[k] = cloneTab(v)
	}
	return snap
}

func memoryStateFromSnapshot(snap Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range snap.Tabs {
		state.tabs[k] = cloneTab(v)
	}
	state.order = append([]string(nil), snap.Order...)
	// Restored ordering is authoritative; there is no record of whether the
	// snapshot was title-sorted when written.
	state.explicitOrder = true
	return state
}

// migrateSnapshot repairs snapshots produced by older layouts or damaged by
// the storage substrate. Records without an id or title are dropped, limits
// and content are re-normalized, and order is rebuilt into a permutation of
// the surviving key set. A snapshot that cannot be repaired degrades toward
// empty state rather than failing the load.
func migrateSnapshot(snap Snapshot) Snapshot {
	if snap.Tabs == nil {
		snap.Tabs = map[string]Tab{}
	}
	for id, tab := range snap.Tabs {
		if id == "" || tab.Title == "" {
			delete(snap.Tabs, id)
			continue
		}
		tab.ID = id
		tab.Config = tab.Config.Normalize()
		tab.Content = domain.TruncateContent(tab.Content, tab.Config.MaxContentSize)
		snap.Tabs[id] = tab
	}

	seen := make(map[string]struct{}, len(snap.Tabs))
	order := make([]string, 0, len(snap.Tabs))
	for _, id := range snap.Order {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := snap.Tabs[id]; !ok {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}

	var missing []string
	for id := range snap.Tabs {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		a, b := snap.Tabs[missing[i]], snap.Tabs[missing[j]]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	snap.Order = append(order, missing...)
	return snap
}

// persistentSubset is the persistence filter: an order-preserving projection
// of the snapshot onto its persist-flagged tabs.
func persistentSubset(snap Snapshot) Snapshot {
	reduced := Snapshot{Tabs: make(map[string]Tab)}
	for _, id := range snap.Order {
		tab, ok := snap.Tabs[id]
		if !ok || !tab.Config.Persist {
			continue
		}
		reduced.Tabs[id] = cloneTab(tab)
		reduced.Order = append(reduced.Order, id)
	}
	return reduced
}

// resortOrder re-sorts display order lexicographically by title (ties broken
// by id). Only called while the store is in sorted mode.
func resortOrder(state *memoryState) {
	sort.Slice(state.order, func(i, j int) bool {
		a, b := state.tabs[state.order[i]], state.tabs[state.order[j]]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

func eligible(state *memoryState) func(string) bool {
	return func(id string) bool {
		tab, ok := state.tabs[id]
		return ok && tab.Config.Reorderable
	}
}

// Store provides an in-memory transactional store for the tab domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the full current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ExportPersistent returns the reduced snapshot containing only tabs flagged
// for durability, preserving their relative display order.
func (s *Store) ExportPersistent() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return persistentSubset(snapshotFromMemoryState(s.state))
}

// ImportState replaces the store state with the provided snapshot. The
// restored store has no active tab.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snap))
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider. Intended for tests and for hosts
// that inject a shared clock.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListTabs returns all tabs in display order.
func (v transactionView) ListTabs() []Tab {
	out := make([]Tab, 0, len(v.state.order))
	for _, id := range v.state.order {
		out = append(out, cloneTab(v.state.tabs[id]))
	}
	return out
}

// OrderedIDs returns the display order id sequence.
func (v transactionView) OrderedIDs() []string {
	return append([]string(nil), v.state.order...)
}

// ActiveTabID returns the active selection, if any.
func (v transactionView) ActiveTabID() (string, bool) {
	return v.state.active, v.state.active != ""
}

// FindTab retrieves a tab by id from the snapshot.
func (v transactionView) FindTab(id string) (Tab, bool) {
	tab, ok := v.state.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return cloneTab(tab), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Validation failures inside fn abandon the copy, so the committed state is
// never partially mutated.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindTab exposes tab lookup within the transaction scope.
func (tx *transaction) FindTab(id string) (Tab, bool) {
	tab, ok := tx.state.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return cloneTab(tab), true
}

// AddTab validates the draft, mints a fresh identifier, and stores the new
// tab as the active selection.
func (tx *transaction) AddTab(draft TabDraft) (Tab, error) {
	const op = "add_tab"
	if draft.Title == "" {
		return Tab{}, domain.NewError(domain.KindInvalidPayload, op, "title is required")
	}
	cfg := domain.DefaultTabConfig().Apply(draft.Config)
	if len(tx.state.tabs) >= cfg.MaxTabs {
		return Tab{}, domain.NewError(domain.KindCapacityExceeded, op, "tab limit %d reached", cfg.MaxTabs)
	}

	id := tx.store.newID()
	if _, exists := tx.state.tabs[id]; exists {
		// Effectively unreachable with 128 bits of entropy; an invariant
		// violation, not a user-facing failure.
		return Tab{}, domain.NewError(domain.KindInternal, op, "generated id %q collides", id)
	}

	content := domain.TruncateContent(draft.Content, cfg.MaxContentSize)
	tab := Tab{
		Base:    domain.Base{ID: id, CreatedAt: tx.now, UpdatedAt: tx.now},
		Title:   draft.Title,
		Content: content,
		IsDirty: content != "",
		Meta:    draft.Meta,
		Config:  cfg,
	}
	tx.state.tabs[id] = cloneTab(tab)
	tx.state.order = append(tx.state.order, id)
	if !tx.state.explicitOrder {
		resortOrder(&tx.state)
	}
	tx.state.active = id
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionCreate, After: cloneTab(tab)})
	return cloneTab(tab), nil
}

// UpdateTab applies the supplied partial fields over the existing tab.
// Content is re-truncated against the post-merge size limit and IsDirty is
// recomputed from the truncated comparison when content is supplied.
func (tx *transaction) UpdateTab(update TabUpdate) (Tab, error) {
	const op = "update_tab"
	current, ok := tx.state.tabs[update.ID]
	if !ok {
		return Tab{}, domain.NewError(domain.KindNotFound, op, "tab %q not found", update.ID)
	}
	before := cloneTab(current)

	if update.Title != nil {
		if *update.Title == "" {
			return Tab{}, domain.NewError(domain.KindInvalidPayload, op, "title cannot be empty")
		}
		current.Title = *update.Title
	}
	if update.Meta != nil {
		current.Meta = *update.Meta
	}
	current.Config = current.Config.Apply(update.Config)

	if update.Content != nil {
		oldTruncated := domain.TruncateContent(before.Content, current.Config.MaxContentSize)
		newTruncated := domain.TruncateContent(*update.Content, current.Config.MaxContentSize)
		if newTruncated != oldTruncated {
			current.IsDirty = true
		}
		current.Content = newTruncated
	} else {
		// A shrunk size limit re-truncates stored content as well.
		current.Content = domain.TruncateContent(current.Content, current.Config.MaxContentSize)
	}

	current.ID = update.ID
	current.UpdatedAt = tx.now
	tx.state.tabs[update.ID] = cloneTab(current)
	if update.Title != nil && before.Title != current.Title && !tx.state.explicitOrder {
		resortOrder(&tx.state)
	}
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionUpdate, Before: before, After: cloneTab(current)})
	return cloneTab(current), nil
}

// RemoveTab erases the tab and, when it was active, promotes the nearest
// eligible neighbor by the forward-then-backward scan.
func (tx *transaction) RemoveTab(id string) error {
	const op = "remove_tab"
	current, ok := tx.state.tabs[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, op, "tab %q not found", id)
	}
	if !current.Config.Closable {
		return domain.NewError(domain.KindNotClosable, op, "tab %q is not closable", id)
	}

	position := len(tx.state.order)
	remaining := make([]string, 0, len(tx.state.order)-1)
	for i, candidate := range tx.state.order {
		if candidate == id {
			position = i
			continue
		}
		remaining = append(remaining, candidate)
	}
	delete(tx.state.tabs, id)
	tx.state.order = remaining

	if tx.state.active == id {
		next, found := domain.NextActiveAfterRemove(tx.state.order, position, eligible(&tx.state))
		if !found {
			next = ""
		}
		tx.state.active = next
	}
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionDelete, Before: cloneTab(current)})
	return nil
}

// MoveTab splices the tab out of its current position and reinserts it at the
// clamped target index. Display order becomes explicit from then on.
func (tx *transaction) MoveTab(id string, index int) error {
	const op = "move_tab"
	current, ok := tx.state.tabs[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, op, "tab %q not found", id)
	}
	if !current.Config.Reorderable {
		return domain.NewError(domain.KindNotAccessible, op, "tab %q is not reorderable", id)
	}

	without := make([]string, 0, len(tx.state.order))
	for _, candidate := range tx.state.order {
		if candidate != id {
			without = append(without, candidate)
		}
	}
	target := domain.ClampIndex(index, len(tx.state.order))
	if target > len(without) {
		target = len(without)
	}
	reordered := make([]string, 0, len(tx.state.order))
	reordered = append(reordered, without[:target]...)
	reordered = append(reordered, id)
	reordered = append(reordered, without[target:]...)
	tx.state.order = reordered
	tx.state.explicitOrder = true
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionMove, After: cloneTab(current)})
	return nil
}

// SetActiveTab selects the given tab. Targets whose config bars them from
// navigation are rejected.
func (tx *transaction) SetActiveTab(id string) error {
	const op = "set_active_tab"
	current, ok := tx.state.tabs[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, op, "tab %q not found", id)
	}
	if !current.Config.Reorderable {
		return domain.NewError(domain.KindNotAccessible, op, "tab %q is not eligible for activation", id)
	}
	tx.state.active = id
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionActivate, After: cloneTab(current)})
	return nil
}

// SwitchTab steps the active selection in the given direction, wrapping
// around the display order and skipping ineligible tabs. It never fails; when
// there is no active tab or no eligible candidate the selection is unchanged.
func (tx *transaction) SwitchTab(direction domain.Direction) (string, bool) {
	if tx.state.active == "" {
		return "", false
	}
	next, moved := domain.StepActive(tx.state.order, tx.state.active, direction, eligible(&tx.state))
	if !moved || next == tx.state.active {
		return tx.state.active, false
	}
	tx.state.active = next
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionActivate, After: cloneTab(tx.state.tabs[next])})
	return next, true
}

// CloseAllTabs unconditionally empties the store and clears the active
// selection. Ordering reverts to title-sorted for subsequent adds.
func (tx *transaction) CloseAllTabs() {
	tx.state = newMemoryState()
	tx.recordChange(Change{Entity: domain.EntityTab, Action: domain.ActionClear})
}

// Read helpers ---------------------------------------------------------------

// GetTab retrieves a tab by id from committed state.
func (s *Store) GetTab(id string) (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tab, ok := s.state.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return cloneTab(tab), true
}

// ListTabs returns all tabs from committed state in display order.
func (s *Store) ListTabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tab, 0, len(s.state.order))
	for _, id := range s.state.order {
		out = append(out, cloneTab(s.state.tabs[id]))
	}
	return out
}

// OrderedIDs returns the committed display order.
func (s *Store) OrderedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.state.order...)
}

// ActiveTabID returns the committed active selection, if any.
func (s *Store) ActiveTabID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.active, s.state.active != ""
}

// ActiveTab resolves the committed active tab record, if any.
func (s *Store) ActiveTab() (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.active == "" {
		return Tab{}, false
	}
	tab, ok := s.state.tabs[s.state.active]
	if !ok {
		return Tab{}, false
	}
	return cloneTab(tab), true
}
