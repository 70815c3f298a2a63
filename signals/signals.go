// Package signals defines the schema-stable observation vocabulary and the
// projection from raw parser facts into it.
//
// Signals are capabilities present in a binary, never predictions about
// behavior. The projector is the single place where ordering decisions are
// made; every later stage preserves that ordering. Rules consume signals
// exclusively — they can never reach back to bytes.
package signals

// Signals is the schema-stable projection of a parsed artifact.
// Field order fixes the JSON key order of the report's signals object.
type Signals struct {
	Module         ModuleSignals       `json:"module"`
	Memory         MemorySignals       `json:"memory"`
	ImportsExports ImportExportSignals `json:"imports_exports"`
	Instructions   InstructionSignals  `json:"instructions"`
}

// ModuleSignals carries whole-module structural facts.
type ModuleSignals struct {
	// FunctionCount counts defined functions; imports are excluded.
	FunctionCount uint32  `json:"function_count"`
	SectionCount  *uint32 `json:"section_count"`
}

// MemorySignals describes declared memory boundaries.
// Pages are 64 KiB units. When multiple memories exist, MinPages, MaxPages,
// and HasMax come from the first memory in module order; MemoryCount
// reflects all of them.
type MemorySignals struct {
	MemoryCount uint32  `json:"memory_count"`
	MinPages    *uint64 `json:"min_pages"`
	MaxPages    *uint64 `json:"max_pages"`
	HasMax      bool    `json:"has_max"`
}

// ImportExportSignals summarizes the module's external interface.
// Lists are sorted: imports by (module, name, kind), exports by (name, kind).
type ImportExportSignals struct {
	ImportCount uint32       `json:"import_count"`
	ExportCount uint32       `json:"export_count"`
	Imports     []ImportItem `json:"imports"`
	Exports     []ExportItem `json:"exports"`
}

// ImportItem is one imported item. Kind is one of
// "func", "memory", "table", "global", "tag".
type ImportItem struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

// ExportItem is one exported item, same kind vocabulary as imports.
type ExportItem struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// InstructionSignals records capability presence and occurrence counts for
// the instructions that complicate static reasoning. Every has flag equals
// its count being positive.
type InstructionSignals struct {
	HasMemoryGrow     bool   `json:"has_memory_grow"`
	MemoryGrowCount   uint64 `json:"memory_grow_count"`
	HasCallIndirect   bool   `json:"has_call_indirect"`
	CallIndirectCount uint64 `json:"call_indirect_count"`
	HasLoop           bool   `json:"has_loop"`
	LoopCount         uint64 `json:"loop_count"`
}
