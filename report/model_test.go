package report

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/0xphen/sebi/artifact"
	"github.com/0xphen/sebi/rules"
	"github.com/0xphen/sebi/signals"
)

func sampleReport() *Report {
	art := artifact.FromBytes("a.wasm", []byte{0x00, 0x61, 0x73, 0x6D}, artifact.SHA256)
	sig := signals.Empty()
	classification := rules.Classify(nil, "default")
	return New(
		ToolInfo{Name: "sebi", Version: "0.1.0"},
		art,
		sig,
		"ok",
		nil,
		nil,
		classification,
	)
}

func TestNewFillsIdentity(t *testing.T) {
	r := sampleReport()

	if r.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %q", r.SchemaVersion)
	}
	if r.Rules.Catalog.CatalogVersion != rules.CatalogVersion {
		t.Errorf("catalog version = %q", r.Rules.Catalog.CatalogVersion)
	}
	if r.Rules.Catalog.Ruleset != rules.Ruleset {
		t.Errorf("ruleset = %q", r.Rules.Catalog.Ruleset)
	}
	if r.Artifact.Path == nil || *r.Artifact.Path != "a.wasm" {
		t.Errorf("path = %v", r.Artifact.Path)
	}
	if r.Artifact.Hash.Algorithm != "sha256" || len(r.Artifact.Hash.Value) != 64 {
		t.Errorf("hash = %+v", r.Artifact.Hash)
	}
}

func TestEncodeJSONTopLevelKeyOrder(t *testing.T) {
	raw, err := sampleReport().EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{
		`"schema_version"`,
		`"tool"`,
		`"artifact"`,
		`"signals"`,
		`"analysis"`,
		`"rules"`,
		`"classification"`,
	}
	text := string(raw)
	last := -1
	for _, key := range wantOrder {
		idx := strings.Index(text, key)
		if idx < 0 {
			t.Fatalf("key %s missing from output", key)
		}
		if idx < last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}
}

func TestEncodeJSONNullableFields(t *testing.T) {
	art := artifact.FromBytes("", []byte{0x01}, artifact.SHA256)
	r := New(
		ToolInfo{Name: "sebi", Version: "0.1.0"},
		art,
		signals.Empty(),
		"parse_error",
		[]string{"parse error: invalid wasm magic number"},
		nil,
		rules.Classify(nil, "default"),
	)

	raw, err := r.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)

	for _, want := range []string{
		`"path": null`,
		`"commit": null`,
		`"min_pages": null`,
		`"max_pages": null`,
		`"section_count": null`,
		`"triggered": []`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %s:\n%s", want, text)
		}
	}
}

func TestNewNormalizesWarnings(t *testing.T) {
	r := New(
		ToolInfo{Name: "sebi", Version: "0.1.0"},
		artifact.FromBytes("a.wasm", nil, artifact.SHA256),
		signals.Empty(),
		"ok",
		[]string{"zeta", "alpha", "zeta", "mid"},
		nil,
		rules.Classify(nil, "default"),
	)

	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(r.Analysis.Warnings, want) {
		t.Errorf("warnings = %v, want %v", r.Analysis.Warnings, want)
	}
}

func TestEncodeJSONDeterministic(t *testing.T) {
	a, err := sampleReport().EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	b, err := sampleReport().EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("serialization differs across runs")
	}
}

func TestEncodeJSONEvidenceKeysSorted(t *testing.T) {
	triggered := []rules.TriggeredRule{
		{
			RuleID:   "R-MEM-02",
			Severity: rules.SeverityHigh,
			Title:    "Runtime memory growth detected",
			Message:  "memory.grow present",
			Evidence: map[string]any{
				"signals.instructions.memory_grow_count": uint64(2),
				"signals.instructions.has_memory_grow":   true,
			},
		},
	}
	r := New(
		ToolInfo{Name: "sebi", Version: "0.1.0"},
		artifact.FromBytes("a.wasm", nil, artifact.SHA256),
		signals.Empty(),
		"ok",
		nil,
		triggered,
		rules.Classify(triggered, "default"),
	)

	raw, err := r.EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}
	// encoding/json sorts map keys, which the schema relies on
	hasIdx := strings.Index(string(raw), "signals.instructions.has_memory_grow")
	countIdx := strings.Index(string(raw), "signals.instructions.memory_grow_count")
	if hasIdx < 0 || countIdx < 0 || hasIdx > countIdx {
		t.Error("evidence keys not in sorted order")
	}
}

func TestReportRoundTrips(t *testing.T) {
	raw, err := sampleReport().EncodeJSON()
	if err != nil {
		t.Fatal(err)
	}

	var back Report
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %q after round trip", back.SchemaVersion)
	}
}
