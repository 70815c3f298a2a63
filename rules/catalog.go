// Package rules holds the policy layer of the analyzer: a fixed catalog of
// rule definitions, the evaluator that applies them to signals, and the
// classifier that collapses triggered rules into a risk verdict.
//
// The central design contract lives here: rules can never inspect bytes.
// Every predicate is a total, pure function over Signals (plus artifact
// size and policy parameters), and every piece of evidence is drawn only
// from the rule's declared schema paths. Changing a rule's severity or
// predicate requires a catalog version bump; rule identifiers are never
// reused.
package rules

import (
	"github.com/0xphen/sebi/policy"
	"github.com/0xphen/sebi/signals"
)

// CatalogVersion identifies the authoritative rule catalog.
const CatalogVersion = "0.1.0"

// Ruleset names the active rule set.
const Ruleset = "default"

// Severity grades a rule. The ordering NONE < Low < Med < High is semantic.
type Severity string

const (
	SeverityNone Severity = "NONE"
	SeverityLow  Severity = "Low"
	SeverityMed  Severity = "Med"
	SeverityHigh Severity = "High"
)

// Rank returns the severity's position in the NONE < Low < Med < High order.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMed:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Context is everything a predicate may observe: the signals, the artifact
// size, and the policy parameters. Bytes are out of reach.
type Context struct {
	Signals           *signals.Signals
	Policy            policy.Policy
	ArtifactSizeBytes uint64
}

// Rule is one catalog entry. Predicates and evidence projectors are pure;
// evidence keys are exactly the declared schema paths.
type Rule struct {
	ID        string
	Category  string
	Title     string
	AppliesTo string
	Message   string
	DependsOn []string
	Severity  func(Context) Severity
	Trigger   func(Context) bool
	Evidence  func(Context) map[string]any
}

func constSeverity(s Severity) func(Context) Severity {
	return func(Context) Severity { return s }
}

// catalog is the ordered, immutable rule table.
var catalog = []Rule{
	{
		ID:        "R-CALL-01",
		Category:  "control_flow",
		Title:     "Dynamic dispatch via function tables",
		AppliesTo: "wasm",
		Message:   "call_indirect present; dynamic dispatch reduces call-graph predictability.",
		DependsOn: []string{
			"signals.instructions.has_call_indirect",
			"signals.instructions.call_indirect_count",
		},
		Severity: constSeverity(SeverityHigh),
		Trigger: func(ctx Context) bool {
			return ctx.Signals.Instructions.HasCallIndirect
		},
		Evidence: func(ctx Context) map[string]any {
			return map[string]any{
				"signals.instructions.has_call_indirect":   ctx.Signals.Instructions.HasCallIndirect,
				"signals.instructions.call_indirect_count": ctx.Signals.Instructions.CallIndirectCount,
			}
		},
	},
	{
		ID:        "R-LOOP-01",
		Category:  "control_flow",
		Title:     "Loop constructs detected",
		AppliesTo: "wasm",
		Message:   "loop present; termination cannot always be proven statically.",
		DependsOn: []string{
			"signals.instructions.has_loop",
			"signals.instructions.loop_count",
		},
		Severity: constSeverity(SeverityMed),
		Trigger: func(ctx Context) bool {
			return ctx.Signals.Instructions.HasLoop
		},
		Evidence: func(ctx Context) map[string]any {
			return map[string]any{
				"signals.instructions.has_loop":   ctx.Signals.Instructions.HasLoop,
				"signals.instructions.loop_count": ctx.Signals.Instructions.LoopCount,
			}
		},
	},
	{
		ID:        "R-MEM-01",
		Category:  "memory",
		Title:     "Missing declared memory maximum",
		AppliesTo: "wasm",
		Message:   "Memory has no declared maximum; static bounding is reduced.",
		DependsOn: []string{
			"signals.memory.has_max",
			"signals.memory.min_pages",
		},
		Severity: constSeverity(SeverityMed),
		Trigger: func(ctx Context) bool {
			return !ctx.Signals.Memory.HasMax
		},
		Evidence: func(ctx Context) map[string]any {
			return map[string]any{
				"signals.memory.has_max":   ctx.Signals.Memory.HasMax,
				"signals.memory.min_pages": ctx.Signals.Memory.MinPages,
			}
		},
	},
	{
		ID:        "R-MEM-02",
		Category:  "memory",
		Title:     "Runtime memory growth detected",
		AppliesTo: "wasm",
		Message:   "memory.grow present; runtime memory expansion capability detected.",
		DependsOn: []string{
			"signals.instructions.has_memory_grow",
			"signals.instructions.memory_grow_count",
		},
		Severity: constSeverity(SeverityHigh),
		Trigger: func(ctx Context) bool {
			return ctx.Signals.Instructions.HasMemoryGrow
		},
		Evidence: func(ctx Context) map[string]any {
			return map[string]any{
				"signals.instructions.has_memory_grow":   ctx.Signals.Instructions.HasMemoryGrow,
				"signals.instructions.memory_grow_count": ctx.Signals.Instructions.MemoryGrowCount,
			}
		},
	},
	{
		ID:        "R-SIZE-01",
		Category:  "artifact",
		Title:     "Large WASM artifact",
		AppliesTo: "wasm",
		Message:   "Artifact size exceeds threshold; complexity correlation signal.",
		DependsOn: []string{
			"artifact.size_bytes",
			"policy.size_threshold_bytes",
		},
		Severity: func(ctx Context) Severity {
			return Severity(ctx.Policy.SizeSeverity)
		},
		Trigger: func(ctx Context) bool {
			return ctx.ArtifactSizeBytes > ctx.Policy.SizeThresholdBytes
		},
		Evidence: func(ctx Context) map[string]any {
			return map[string]any{
				"artifact.size_bytes":         ctx.ArtifactSizeBytes,
				"policy.size_threshold_bytes": ctx.Policy.SizeThresholdBytes,
			}
		},
	},
}

// Catalog returns the rule table in catalog order.
func Catalog() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the rule with the given id.
func Lookup(id string) (Rule, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
