package core

import (
	"context"
	"fmt"

	"tabcore/pkg/domain"
)

// NewOrderIntegrityRule returns the rule enforcing that the display order is
// an exact permutation of the stored tab set.
func NewOrderIntegrityRule() domain.Rule {
	return orderIntegrityRule{}
}

type orderIntegrityRule struct{}

func (orderIntegrityRule) Name() string { return "order_integrity" }

func (orderIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	ids := view.OrderedIDs()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "order_integrity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("tab %s appears twice in display order", id),
				Entity:   domain.EntityTab,
				EntityID: id,
			})
			continue
		}
		seen[id] = struct{}{}
		if _, ok := view.FindTab(id); !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "order_integrity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("display order references unknown tab %s", id),
				Entity:   domain.EntityTab,
				EntityID: id,
			})
		}
	}
	return res, nil
}
