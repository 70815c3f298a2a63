// Package report defines the externally observable analysis record and its
// canonical serializations.
//
// The JSON wire format is schema-versioned and fully deterministic: field
// order is fixed by struct declaration order, every list is pre-sorted by
// the producing stage, nullable fields serialize as explicit nulls, and no
// timestamp or environment-dependent value appears anywhere. Two runs over
// identical bytes yield byte-identical serialized reports.
package report

import (
	"encoding/json"
	"sort"

	"github.com/0xphen/sebi/artifact"
	"github.com/0xphen/sebi/rules"
	"github.com/0xphen/sebi/signals"
)

// SchemaVersion gates breaking changes to the report structure.
const SchemaVersion = "0.1.0"

// ToolInfo identifies the producing tool. It is copied into the report
// verbatim and is the only source of tool identity in the output.
type ToolInfo struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Commit  *string `json:"commit"`
}

// ArtifactHash is the artifact's content digest.
type ArtifactHash struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

// ArtifactInfo is the report-facing artifact identity. The path is
// informational only; analysis depends exclusively on bytes.
type ArtifactInfo struct {
	Path      *string      `json:"path"`
	SizeBytes uint64       `json:"size_bytes"`
	Hash      ArtifactHash `json:"hash"`
}

// AnalysisInfo reflects how completely the binary was understood.
// Status is "ok", "parse_error", or "unsupported"; warnings are sorted and
// de-duplicated.
type AnalysisInfo struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings"`
}

// CatalogInfo identifies the rule catalog a report was evaluated against.
type CatalogInfo struct {
	CatalogVersion string `json:"catalog_version"`
	Ruleset        string `json:"ruleset"`
}

// RulesInfo groups catalog identity with the triggered rules.
type RulesInfo struct {
	Catalog   CatalogInfo           `json:"catalog"`
	Triggered []rules.TriggeredRule `json:"triggered"`
}

// Report is the top-level analysis record. Field order fixes the JSON key
// order: schema_version, tool, artifact, signals, analysis, rules,
// classification.
type Report struct {
	SchemaVersion  string               `json:"schema_version"`
	Tool           ToolInfo             `json:"tool"`
	Artifact       ArtifactInfo         `json:"artifact"`
	Signals        signals.Signals      `json:"signals"`
	Analysis       AnalysisInfo         `json:"analysis"`
	Rules          RulesInfo            `json:"rules"`
	Classification rules.Classification `json:"classification"`
}

// New assembles a report from already-immutable pieces. Warnings are
// sorted and de-duplicated here; the triggered list is used as delivered
// by the evaluator, which owns its ordering.
func New(
	tool ToolInfo,
	art *artifact.Artifact,
	sig signals.Signals,
	status string,
	warnings []string,
	triggered []rules.TriggeredRule,
	classification rules.Classification,
) *Report {
	if triggered == nil {
		triggered = []rules.TriggeredRule{}
	}

	var path *string
	if art.Path != "" {
		p := art.Path
		path = &p
	}

	return &Report{
		SchemaVersion: SchemaVersion,
		Tool:          tool,
		Artifact: ArtifactInfo{
			Path:      path,
			SizeBytes: art.SizeBytes,
			Hash: ArtifactHash{
				Algorithm: art.HashAlgorithm,
				Value:     art.HashHex,
			},
		},
		Signals: sig,
		Analysis: AnalysisInfo{
			Status:   status,
			Warnings: normalizeWarnings(warnings),
		},
		Rules: RulesInfo{
			Catalog: CatalogInfo{
				CatalogVersion: rules.CatalogVersion,
				Ruleset:        rules.Ruleset,
			},
			Triggered: triggered,
		},
		Classification: classification,
	}
}

// EncodeJSON produces the canonical serialized form.
func (r *Report) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// normalizeWarnings sorts and de-duplicates, always returning a non-nil
// slice so empty lists serialize as [].
func normalizeWarnings(warnings []string) []string {
	out := make([]string, 0, len(warnings))
	seen := map[string]bool{}
	for _, w := range warnings {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}
