package wasm_test

import (
	"testing"

	"github.com/0xphen/sebi/internal/fixture"
	"github.com/0xphen/sebi/wasm"
)

func TestParseEmptyModule(t *testing.T) {
	res := wasm.Parse(fixture.New().Encode())

	if res.Status != wasm.StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	if res.Facts.SectionCount != 0 {
		t.Errorf("section count = %d, want 0", res.Facts.SectionCount)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "no memory section or imported memory detected" {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"not wasm", []byte("not a wasm file")},
		{"short header", []byte{0x00, 0x61, 0x73}},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := wasm.Parse(tt.data)
			if res.Status != wasm.StatusParseError {
				t.Errorf("status = %v, want parse_error", res.Status)
			}
			if res.Facts.SectionCount != 0 || len(res.Facts.Imports) != 0 {
				t.Errorf("facts not conservatively zeroed: %+v", res.Facts)
			}
			if len(res.Warnings) == 0 {
				t.Error("expected a diagnostic warning")
			}
		})
	}
}

func TestParseDeclaredMemory(t *testing.T) {
	res := wasm.Parse(fixture.New().WithBoundedMemory(1, 4).Encode())

	if res.Status != wasm.StatusOK {
		t.Fatalf("status = %v: %v", res.Status, res.Warnings)
	}
	if len(res.Facts.Memories) != 1 {
		t.Fatalf("memories = %d, want 1", len(res.Facts.Memories))
	}
	mem := res.Facts.Memories[0]
	if mem.Source != wasm.MemoryDeclared {
		t.Errorf("source = %v, want declared", mem.Source)
	}
	if mem.MinPages != 1 {
		t.Errorf("min pages = %d, want 1", mem.MinPages)
	}
	if mem.MaxPages == nil || *mem.MaxPages != 4 {
		t.Errorf("max pages = %v, want 4", mem.MaxPages)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestParseUnboundedMemory(t *testing.T) {
	res := wasm.Parse(fixture.New().WithMemory(2).Encode())

	mem := res.Facts.Memories[0]
	if mem.MaxPages != nil {
		t.Errorf("max pages = %v, want nil", *mem.MaxPages)
	}
	if mem.MinPages != 2 {
		t.Errorf("min pages = %d, want 2", mem.MinPages)
	}
}

func TestParseImportedMemory(t *testing.T) {
	res := wasm.Parse(fixture.New().WithImportedMemory("env", "memory", 1, 16).Encode())

	if len(res.Facts.Memories) != 1 {
		t.Fatalf("memories = %d, want 1", len(res.Facts.Memories))
	}
	mem := res.Facts.Memories[0]
	if mem.Source != wasm.MemoryImported {
		t.Errorf("source = %v, want imported", mem.Source)
	}
	if mem.MaxPages == nil || *mem.MaxPages != 16 {
		t.Errorf("max pages = %v, want 16", mem.MaxPages)
	}

	if len(res.Facts.Imports) != 1 {
		t.Fatalf("imports = %d, want 1", len(res.Facts.Imports))
	}
	imp := res.Facts.Imports[0]
	if imp.Module != "env" || imp.Name != "memory" || imp.Kind != wasm.ExternMemory {
		t.Errorf("import = %+v", imp)
	}
}

func TestParseImportsAndExports(t *testing.T) {
	mod := fixture.New().
		WithImportedFunc("env", "abort").
		WithImportedFunc("wasi_snapshot_preview1", "fd_write").
		WithBoundedMemory(1, 2).
		WithFunc().
		WithExportedFunc("run", 2).
		WithExport("mem", 2, 0)

	res := wasm.Parse(mod.Encode())
	if res.Status != wasm.StatusOK {
		t.Fatalf("status = %v: %v", res.Status, res.Warnings)
	}

	if got := len(res.Facts.Imports); got != 2 {
		t.Errorf("import count = %d, want 2", got)
	}
	if got := len(res.Facts.Exports); got != 2 {
		t.Errorf("export count = %d, want 2", got)
	}
	// Imported functions are excluded from the function count
	if res.Facts.FunctionCount != 1 {
		t.Errorf("function count = %d, want 1", res.Facts.FunctionCount)
	}

	if res.Facts.Exports[0].Name != "run" || res.Facts.Exports[0].Kind != wasm.ExternFunc {
		t.Errorf("export[0] = %+v", res.Facts.Exports[0])
	}
	if res.Facts.Exports[1].Kind != wasm.ExternMemory {
		t.Errorf("export[1] = %+v", res.Facts.Exports[1])
	}
}

func TestParseSectionCount(t *testing.T) {
	mod := fixture.New().
		WithBoundedMemory(1, 1).
		WithFunc().
		WithExportedFunc("f", 0)

	// type, function, memory, export, code
	res := wasm.Parse(mod.Encode())
	if res.Facts.SectionCount != 5 {
		t.Errorf("section count = %d, want 5", res.Facts.SectionCount)
	}
}

func TestParseInstructionCountsAcrossFunctions(t *testing.T) {
	mod := fixture.New().
		WithBoundedMemory(1, 4).
		WithTable(1).
		WithFunc(fixture.Cat(fixture.MemoryGrow(1), fixture.MemoryGrow(1))...).
		WithFunc(fixture.MemoryGrow(2)...).
		WithFunc(fixture.Loop(fixture.Loop()...)...)

	res := wasm.Parse(mod.Encode())
	if res.Status != wasm.StatusOK {
		t.Fatalf("status = %v: %v", res.Status, res.Warnings)
	}
	if res.Facts.MemoryGrowCount != 3 {
		t.Errorf("memory grow count = %d, want 3", res.Facts.MemoryGrowCount)
	}
	if res.Facts.LoopCount != 2 {
		t.Errorf("loop count = %d, want 2", res.Facts.LoopCount)
	}
	if res.Facts.CallIndirectCount != 0 {
		t.Errorf("call indirect count = %d, want 0", res.Facts.CallIndirectCount)
	}
	if res.Facts.FunctionCount != 3 {
		t.Errorf("function count = %d, want 3", res.Facts.FunctionCount)
	}
}

func TestParseMalformedCodeSection(t *testing.T) {
	// Body claims a loop but ends before its end opcode
	mod := fixture.New().WithRawFunc(0x03, 0x40)

	res := wasm.Parse(mod.Encode())
	if res.Status != wasm.StatusParseError {
		t.Fatalf("status = %v, want parse_error", res.Status)
	}
	if res.Facts.LoopCount != 0 || res.Facts.FunctionCount != 0 {
		t.Errorf("facts not zeroed after parse error: %+v", res.Facts)
	}
}

func TestParseUnknownOpcodeDegradesToUnsupported(t *testing.T) {
	mod := fixture.New().
		WithBoundedMemory(1, 1).
		WithFunc(fixture.Loop()...).
		WithRawFunc(0x27, 0x0B) // unassigned opcode then end

	res := wasm.Parse(mod.Encode())
	if res.Status != wasm.StatusUnsupported {
		t.Fatalf("status = %v, want unsupported", res.Status)
	}
	// The good body's contribution is retained; the bad body is discarded.
	if res.Facts.LoopCount != 1 {
		t.Errorf("loop count = %d, want 1", res.Facts.LoopCount)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning naming the skipped body")
	}
}

func TestParseSectionOutOfOrder(t *testing.T) {
	// Memory section (5) followed by import section (2)
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x01,
		0x02, 0x01, 0x00,
	}
	res := wasm.Parse(data)
	if res.Status != wasm.StatusParseError {
		t.Errorf("status = %v, want parse_error", res.Status)
	}
}

func TestParseCustomSectionCounted(t *testing.T) {
	// (module) followed by a custom section "name" with 2 payload bytes
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x07, 0x04, 'n', 'a', 'm', 'e', 0xAA, 0xBB,
	}
	res := wasm.Parse(data)
	if res.Status != wasm.StatusOK {
		t.Fatalf("status = %v: %v", res.Status, res.Warnings)
	}
	if res.Facts.SectionCount != 1 {
		t.Errorf("section count = %d, want 1", res.Facts.SectionCount)
	}
}

func TestParseTruncatedSection(t *testing.T) {
	// Section claims 10 bytes but only 2 follow
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x0A, 0x01, 0x00,
	}
	res := wasm.Parse(data)
	if res.Status != wasm.StatusParseError {
		t.Errorf("status = %v, want parse_error", res.Status)
	}
}

func TestParseDeterministic(t *testing.T) {
	mod := fixture.New().
		WithImportedMemory("env", "memory", 2, 8).
		WithTable(2).
		WithFunc(fixture.CallIndirect(0)...).
		WithExportedFunc("main", 0)
	data := mod.Encode()

	a := wasm.Parse(data)
	b := wasm.Parse(data)

	if a.Status != b.Status {
		t.Errorf("status differs: %v vs %v", a.Status, b.Status)
	}
	if a.Facts.CallIndirectCount != b.Facts.CallIndirectCount ||
		a.Facts.SectionCount != b.Facts.SectionCount {
		t.Errorf("facts differ: %+v vs %+v", a.Facts, b.Facts)
	}
}
