// Package wasm extracts structural facts from WebAssembly binary modules.
//
// This is the observation layer of the analyzer: Parse walks a binary's
// sections in file order and produces RawFacts — section counts, memory
// limits, imports, exports, and occurrence counts for the instructions
// that complicate static reasoning (loop, memory.grow, call_indirect).
//
// The package decodes the full WebAssembly 2.0 instruction set plus the
// bulk-memory (0xFC), SIMD (0xFD), atomics (0xFE), GC (0xFB), tail-call,
// and exception-handling opcodes — far enough to keep the byte cursor
// synchronized through every function body. It never interprets semantics,
// executes code, or validates types.
//
// Parsing is total over arbitrary input:
//
//	res := wasm.Parse(data)
//	switch res.Status {
//	case wasm.StatusOK:          // facts are complete
//	case wasm.StatusUnsupported: // some bodies skipped, see res.Warnings
//	case wasm.StatusParseError:  // facts zeroed, diagnostic in res.Warnings
//	}
//
// RawFacts preserve module order; all sorting and schema normalization is
// the signals projector's job.
package wasm
