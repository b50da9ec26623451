package core

import (
	"context"
	"fmt"
	"unicode/utf8"

	"tabcore/pkg/domain"
)

// NewContentLimitRule returns the rule verifying stored content never exceeds
// the per-tab size limit. Transactions truncate on write, so a violation here
// indicates an imported snapshot or mutation path that bypassed truncation.
func NewContentLimitRule() domain.Rule {
	return contentLimitRule{}
}

type contentLimitRule struct{}

func (contentLimitRule) Name() string { return "content_limit" }

func (contentLimitRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, tab := range view.ListTabs() {
		limit := tab.Config.MaxContentSize
		if limit <= 0 {
			continue
		}
		if n := utf8.RuneCountInString(tab.Content); n > limit {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "content_limit",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("tab %s content %d exceeds limit %d", tab.ID, n, limit),
				Entity:   domain.EntityTab,
				EntityID: tab.ID,
			})
		}
	}
	return res, nil
}
