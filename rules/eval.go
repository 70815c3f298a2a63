package rules

import "sort"

// TriggeredRule is a catalog rule whose predicate held on a Signals record.
// Purely interpretive: rule identity, severity from the catalog, static
// metadata, and evidence limited to the rule's declared schema paths.
type TriggeredRule struct {
	RuleID   string         `json:"rule_id"`
	Severity Severity       `json:"severity"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Evidence map[string]any `json:"evidence"`
}

// Evaluate applies every catalog rule to the context and returns the
// triggered rules sorted by rule id.
//
// Evaluation is order-independent and total: it never short-circuits, has
// no side effects, and cannot fail on a well-formed Signals record.
func Evaluate(ctx Context) []TriggeredRule {
	var out []TriggeredRule

	for _, rule := range Catalog() {
		if !rule.Trigger(ctx) {
			continue
		}
		out = append(out, TriggeredRule{
			RuleID:   rule.ID,
			Severity: rule.Severity(ctx),
			Title:    rule.Title,
			Message:  rule.Message,
			Evidence: rule.Evidence(ctx),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RuleID < out[j].RuleID
	})
	return out
}
