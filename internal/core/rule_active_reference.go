package core

import (
	"context"
	"fmt"

	"tabcore/pkg/domain"
)

// NewActiveReferenceRule returns the rule enforcing that the active selection
// always refers to an existing tab.
func NewActiveReferenceRule() domain.Rule {
	return activeReferenceRule{}
}

type activeReferenceRule struct{}

func (activeReferenceRule) Name() string { return "active_reference" }

func (activeReferenceRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	active, ok := view.ActiveTabID()
	if !ok {
		return res, nil
	}
	if _, found := view.FindTab(active); !found {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "active_reference",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("active selection references unknown tab %s", active),
			Entity:   domain.EntityTab,
			EntityID: active,
		})
	}
	return res, nil
}
