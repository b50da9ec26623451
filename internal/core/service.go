package core

import (
	"context"
	"time"

	"tabcore/pkg/domain"
)

// Service exposes the tab operations over a persistent store, wrapping every
// mutation with logging, metrics, tracing, and audit.
type Service struct {
	store   PersistentStore
	logger  Logger
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		store:   store,
		logger:  options.logger,
		clock:   options.clock,
		audit:   options.audit,
		metrics: options.metrics,
		tracer:  options.tracer,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// auditMetadata maps service operations to the audited entity and action.
// Operations absent from the map are not audited.
var auditMetadata = map[string]struct {
	entity domain.EntityType
	action domain.Action
}{
	"add_tab":        {domain.EntityTab, domain.ActionCreate},
	"update_tab":     {domain.EntityTab, domain.ActionUpdate},
	"remove_tab":     {domain.EntityTab, domain.ActionDelete},
	"move_tab":       {domain.EntityTab, domain.ActionMove},
	"set_active_tab": {domain.EntityTab, domain.ActionActivate},
	"switch_tab":     {domain.EntityTab, domain.ActionActivate},
	"close_all_tabs": {domain.EntityTab, domain.ActionClear},
}

// run executes fn inside a store transaction with the full observability
// wrapping. entityID resolves the audited entity after a successful commit
// and may be nil for bulk operations.
func (s *Service) run(ctx context.Context, operation string, entityID func() string, fn func(Transaction) error) (Result, error) {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
		s.recordAuditError(ctx, operation, duration)
		return res, err
	}
	s.logger.Debug("operation completed", "operation", operation, "duration", duration)
	id := ""
	if entityID != nil {
		id = entityID()
	}
	s.recordAuditSuccess(ctx, operation, id, duration)
	return res, nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, operation, entityID string, duration time.Duration) {
	s.recordAudit(ctx, operation, entityID, AuditStatusSuccess, duration)
}

func (s *Service) recordAuditError(ctx context.Context, operation string, duration time.Duration) {
	s.recordAudit(ctx, operation, "", AuditStatusError, duration)
}

func (s *Service) recordAudit(ctx context.Context, operation, entityID string, status AuditStatus, duration time.Duration) {
	meta, ok := auditMetadata[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// AddTab creates a tab from the draft and makes it the active selection.
func (s *Service) AddTab(ctx context.Context, draft TabDraft) (Tab, Result, error) {
	var created Tab
	res, err := s.run(ctx, "add_tab", func() string { return created.ID }, func(tx Transaction) error {
		var err error
		created, err = tx.AddTab(draft)
		return err
	})
	return created, res, err
}

// UpdateTab applies a partial update to an existing tab.
func (s *Service) UpdateTab(ctx context.Context, update TabUpdate) (Tab, Result, error) {
	var updated Tab
	res, err := s.run(ctx, "update_tab", func() string { return updated.ID }, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTab(update)
		return err
	})
	return updated, res, err
}

// RemoveTab deletes a tab, promoting a neighbor when it was active.
func (s *Service) RemoveTab(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "remove_tab", func() string { return id }, func(tx Transaction) error {
		return tx.RemoveTab(id)
	})
}

// MoveTab repositions a tab within the display order.
func (s *Service) MoveTab(ctx context.Context, id string, index int) (Result, error) {
	return s.run(ctx, "move_tab", func() string { return id }, func(tx Transaction) error {
		return tx.MoveTab(id, index)
	})
}

// SetActiveTab selects the given tab.
func (s *Service) SetActiveTab(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "set_active_tab", func() string { return id }, func(tx Transaction) error {
		return tx.SetActiveTab(id)
	})
}

// SwitchTab steps the active selection in the given direction and returns
// the resulting active id along with whether the selection moved.
func (s *Service) SwitchTab(ctx context.Context, direction Direction) (string, bool, Result, error) {
	var active string
	var moved bool
	res, err := s.run(ctx, "switch_tab", func() string { return active }, func(tx Transaction) error {
		active, moved = tx.SwitchTab(direction)
		return nil
	})
	return active, moved, res, err
}

// CloseAllTabs removes every tab and clears the active selection.
func (s *Service) CloseAllTabs(ctx context.Context) (Result, error) {
	return s.run(ctx, "close_all_tabs", nil, func(tx Transaction) error {
		tx.CloseAllTabs()
		return nil
	})
}

// GetTab retrieves a tab by id.
func (s *Service) GetTab(id string) (Tab, bool) {
	return s.store.GetTab(id)
}

// ListTabs returns all tabs in display order.
func (s *Service) ListTabs() []Tab {
	return s.store.ListTabs()
}

// OrderedIDs returns the display order id sequence.
func (s *Service) OrderedIDs() []string {
	return s.store.OrderedIDs()
}

// ActiveTabID returns the active selection, if any.
func (s *Service) ActiveTabID() (string, bool) {
	return s.store.ActiveTabID()
}

// ActiveTab resolves the active tab record, if any.
func (s *Service) ActiveTab() (Tab, bool) {
	return s.store.ActiveTab()
}
