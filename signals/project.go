package signals

import (
	"sort"

	"github.com/0xphen/sebi/wasm"
)

// kindOrder fixes the stable ordering of the kind enum used as a sort
// tiebreaker: func < memory < table < global < tag.
var kindOrder = map[string]int{
	"func":   0,
	"memory": 1,
	"table":  2,
	"global": 3,
	"tag":    4,
}

// Project deterministically maps RawFacts into the Signals schema.
//
// It is a pure function: same facts, same signals. Imports are sorted by
// (module, name, kind), exports by (name, kind); memory signals derive from
// the first memory in module order. No rule evaluation happens here.
func Project(facts *wasm.RawFacts) Signals {
	sectionCount := facts.SectionCount

	mem := MemorySignals{
		MemoryCount: uint32(len(facts.Memories)),
	}
	if len(facts.Memories) > 0 {
		first := facts.Memories[0]
		minPages := first.MinPages
		mem.MinPages = &minPages
		if first.MaxPages != nil {
			maxPages := *first.MaxPages
			mem.MaxPages = &maxPages
			mem.HasMax = true
		}
	}

	imports := make([]ImportItem, len(facts.Imports))
	for i, imp := range facts.Imports {
		imports[i] = ImportItem{
			Module: imp.Module,
			Name:   imp.Name,
			Kind:   imp.Kind.String(),
		}
	}
	sort.SliceStable(imports, func(i, j int) bool {
		a, b := imports[i], imports[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return kindOrder[a.Kind] < kindOrder[b.Kind]
	})

	exports := make([]ExportItem, len(facts.Exports))
	for i, exp := range facts.Exports {
		exports[i] = ExportItem{
			Name: exp.Name,
			Kind: exp.Kind.String(),
		}
	}
	sort.SliceStable(exports, func(i, j int) bool {
		a, b := exports[i], exports[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return kindOrder[a.Kind] < kindOrder[b.Kind]
	})

	return Signals{
		Module: ModuleSignals{
			FunctionCount: facts.FunctionCount,
			SectionCount:  &sectionCount,
		},
		Memory: mem,
		ImportsExports: ImportExportSignals{
			ImportCount: uint32(len(facts.Imports)),
			ExportCount: uint32(len(facts.Exports)),
			Imports:     imports,
			Exports:     exports,
		},
		Instructions: InstructionSignals{
			HasMemoryGrow:     facts.MemoryGrowCount > 0,
			MemoryGrowCount:   facts.MemoryGrowCount,
			HasCallIndirect:   facts.CallIndirectCount > 0,
			CallIndirectCount: facts.CallIndirectCount,
			HasLoop:           facts.LoopCount > 0,
			LoopCount:         facts.LoopCount,
		},
	}
}

// Empty returns the conservative zero projection used after parse errors:
// no counts, empty lists, null pages, null section count.
func Empty() Signals {
	return Signals{
		ImportsExports: ImportExportSignals{
			Imports: []ImportItem{},
			Exports: []ExportItem{},
		},
	}
}
