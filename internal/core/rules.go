package core

// NewDefaultRulesEngine returns a rules engine with the built-in invariants
// registered: display-order integrity, active-tab reference, and per-tab
// content limits.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewOrderIntegrityRule())
	engine.Register(NewActiveReferenceRule())
	engine.Register(NewContentLimitRule())
	return engine
}
