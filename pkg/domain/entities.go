// Package domain defines the core tab entities, value types, error taxonomy,
// and rule evaluation primitives used by tabcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityTab identifies a tab record.
	EntityTab EntityType = "tab"
)

// Direction selects the neighbor a switch operation steps toward.
type Direction string

// Switch directions relative to display order.
const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// Default configuration values applied when a draft or patch leaves a field unset.
const (
	DefaultMaxTabs        = 10
	DefaultMaxContentSize = 1000
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TabConfig holds the per-tab behavior flags and limits in effect for a tab.
// Values are always fully resolved; partial overrides travel as TabConfigPatch.
type TabConfig struct {
	Closable       bool `json:"closable"`
	Reorderable    bool `json:"reorderable"`
	Persist        bool `json:"persist"`
	MaxTabs        int  `json:"max_tabs"`
	MaxContentSize int  `json:"max_content_size"`
}

// DefaultTabConfig returns the resolved defaults applied to new tabs.
func DefaultTabConfig() TabConfig {
	return TabConfig{
		Closable:       true,
		Reorderable:    true,
		Persist:        false,
		MaxTabs:        DefaultMaxTabs,
		MaxContentSize: DefaultMaxContentSize,
	}
}

// TabConfigPatch carries optional per-field overrides. Nil fields keep the
// base value; the merge is explicit field assignment, never reflection.
type TabConfigPatch struct {
	Closable       *bool `json:"closable,omitempty"`
	Reorderable    *bool `json:"reorderable,omitempty"`
	Persist        *bool `json:"persist,omitempty"`
	MaxTabs        *int  `json:"max_tabs,omitempty"`
	MaxContentSize *int  `json:"max_content_size,omitempty"`
}

// Apply resolves the patch over the base config and returns the result.
func (c TabConfig) Apply(patch *TabConfigPatch) TabConfig {
	if patch == nil {
		return c
	}
	if patch.Closable != nil {
		c.Closable = *patch.Closable
	}
	if patch.Reorderable != nil {
		c.Reorderable = *patch.Reorderable
	}
	if patch.Persist != nil {
		c.Persist = *patch.Persist
	}
	if patch.MaxTabs != nil {
		c.MaxTabs = *patch.MaxTabs
	}
	if patch.MaxContentSize != nil {
		c.MaxContentSize = *patch.MaxContentSize
	}
	return c
}

// Normalize clamps non-positive limits back to their defaults. Used when
// rehydrating snapshots whose schema or values drifted.
func (c TabConfig) Normalize() TabConfig {
	if c.MaxTabs <= 0 {
		c.MaxTabs = DefaultMaxTabs
	}
	if c.MaxContentSize <= 0 {
		c.MaxContentSize = DefaultMaxContentSize
	}
	return c
}

// Tab represents a named, content-bearing unit of state with its own configuration.
type Tab struct {
	Base
	Title   string    `json:"title"`
	Content string    `json:"content"`
	IsDirty bool      `json:"is_dirty"`
	Meta    string    `json:"meta,omitempty"`
	Config  TabConfig `json:"config"`
}

// TabDraft is the payload accepted by the add operation.
type TabDraft struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Meta    string          `json:"meta,omitempty"`
	Config  *TabConfigPatch `json:"config,omitempty"`
}

// TabUpdate is the partial payload accepted by the update operation. Nil
// fields leave the current value untouched.
type TabUpdate struct {
	ID      string          `json:"id"`
	Title   *string         `json:"title,omitempty"`
	Content *string         `json:"content,omitempty"`
	Meta    *string         `json:"meta,omitempty"`
	Config  *TabConfigPatch `json:"config,omitempty"`
}

// TruncateContent trims content to the given character limit. Limits are
// counted in runes so multi-byte content is never split mid-character.
func TruncateContent(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit])
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionMove indicates an entity changed display position.
	ActionMove Action = "move"
	// ActionActivate indicates the active-tab selection changed.
	ActionActivate Action = "activate"
	// ActionClear indicates the store was emptied wholesale.
	ActionClear Action = "clear"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
