// Package fixture synthesizes small WebAssembly binaries for tests.
//
// The builder covers just enough of the binary format to exercise the
// analyzer: memories (declared and imported), imports, exports, tables,
// and function bodies given as raw instruction bytes. Encode produces a
// spec-ordered module; no external toolchain is involved.
package fixture

import (
	"bytes"
	"encoding/binary"
)

// Section IDs and encoding constants, local to the builder.
const (
	secType     byte = 1
	secImport   byte = 2
	secFunction byte = 3
	secTable    byte = 4
	secMemory   byte = 5
	secExport   byte = 7
	secCode     byte = 10

	kindFunc   byte = 0
	kindTable  byte = 1
	kindMemory byte = 2
	kindGlobal byte = 3

	funcTypeByte byte = 0x60
	funcRefByte  byte = 0x70
)

// Opcode constants for composing bodies.
const (
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
	OpDrop         byte = 0x1A
	OpLocalGet     byte = 0x20
	OpMemoryGrow   byte = 0x40
	OpI32Const     byte = 0x41
	OpI32Add       byte = 0x6A
	BlockVoid      byte = 0x40
)

// Memory describes one linear memory. Max < 0 means no maximum.
type Memory struct {
	Min int
	Max int
}

// Import describes one imported item; only the kinds the analyzer observes
// are representable.
type Import struct {
	Module string
	Name   string
	Kind   byte
	Mem    Memory // for kindMemory imports
}

// Export describes one exported item.
type Export struct {
	Name string
	Kind byte
	Idx  int
}

// Module accumulates fixture content. The zero value is an empty module.
type Module struct {
	imports  []Import
	memories []Memory
	exports  []Export
	bodies   [][]byte
	tableMin int
	hasTable bool
}

// New creates an empty fixture module.
func New() *Module {
	return &Module{}
}

// WithMemory declares a memory with min pages and no maximum.
func (m *Module) WithMemory(min int) *Module {
	m.memories = append(m.memories, Memory{Min: min, Max: -1})
	return m
}

// WithBoundedMemory declares a memory with min and max pages.
func (m *Module) WithBoundedMemory(min, max int) *Module {
	m.memories = append(m.memories, Memory{Min: min, Max: max})
	return m
}

// WithImportedMemory imports a memory from module/name. max < 0 means no
// maximum.
func (m *Module) WithImportedMemory(module, name string, min, max int) *Module {
	m.imports = append(m.imports, Import{
		Module: module, Name: name, Kind: kindMemory,
		Mem: Memory{Min: min, Max: max},
	})
	return m
}

// WithImportedFunc imports a nullary function from module/name.
func (m *Module) WithImportedFunc(module, name string) *Module {
	m.imports = append(m.imports, Import{Module: module, Name: name, Kind: kindFunc})
	return m
}

// WithTable declares a funcref table, required for call_indirect bodies.
func (m *Module) WithTable(min int) *Module {
	m.hasTable = true
	m.tableMin = min
	return m
}

// WithExport exports item idx of the given kind under name.
func (m *Module) WithExport(name string, kind byte, idx int) *Module {
	m.exports = append(m.exports, Export{Name: name, Kind: kind, Idx: idx})
	return m
}

// WithExportedFunc exports function idx as name.
func (m *Module) WithExportedFunc(name string, idx int) *Module {
	return m.WithExport(name, kindFunc, idx)
}

// WithFunc adds a nullary void function whose body is the given instruction
// bytes. The terminating end opcode is appended automatically.
func (m *Module) WithFunc(body ...byte) *Module {
	full := make([]byte, 0, len(body)+1)
	full = append(full, body...)
	full = append(full, OpEnd)
	m.bodies = append(m.bodies, full)
	return m
}

// WithRawFunc adds a function whose body bytes are used verbatim, including
// any (possibly missing) terminator. Used to craft malformed bodies.
func (m *Module) WithRawFunc(body ...byte) *Module {
	m.bodies = append(m.bodies, body)
	return m
}

// Instruction helpers for readable bodies.

// Loop wraps body in a void loop construct.
func Loop(body ...byte) []byte {
	out := []byte{OpLoop, BlockVoid}
	out = append(out, body...)
	return append(out, OpEnd)
}

// Block wraps body in a void block construct.
func Block(body ...byte) []byte {
	out := []byte{OpBlock, BlockVoid}
	out = append(out, body...)
	return append(out, OpEnd)
}

// I32Const pushes a small constant.
func I32Const(v int) []byte {
	var buf bytes.Buffer
	buf.WriteByte(OpI32Const)
	writeSLEB(&buf, int64(v))
	return buf.Bytes()
}

// MemoryGrow grows memory 0 by the value on the stack and drops the result.
func MemoryGrow(pages int) []byte {
	out := I32Const(pages)
	out = append(out, OpMemoryGrow, 0x00, OpDrop)
	return out
}

// CallIndirect performs an indirect call through table 0 with type index 0,
// using the value on the stack as the element index.
func CallIndirect(elem int) []byte {
	out := I32Const(elem)
	out = append(out, OpCallIndirect, 0x00, 0x00)
	return out
}

// Cat concatenates instruction fragments.
func Cat(frags ...[]byte) []byte {
	var out []byte
	for _, f := range frags {
		out = append(out, f...)
	}
	return out
}

// Encode produces the binary module in spec section order.
func (m *Module) Encode() []byte {
	var out bytes.Buffer

	// Header
	le := make([]byte, 4)
	binary.LittleEndian.PutUint32(le, 0x6D736100)
	out.Write(le)
	binary.LittleEndian.PutUint32(le, 1)
	out.Write(le)

	importedFuncs := 0
	for _, imp := range m.imports {
		if imp.Kind == kindFunc {
			importedFuncs++
		}
	}

	// Type section: a single () -> () signature shared by every function.
	if len(m.bodies) > 0 || importedFuncs > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, 1)
		sec.WriteByte(funcTypeByte)
		writeULEB(&sec, 0) // params
		writeULEB(&sec, 0) // results
		writeSection(&out, secType, sec.Bytes())
	}

	// Import section
	if len(m.imports) > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, uint64(len(m.imports)))
		for _, imp := range m.imports {
			writeName(&sec, imp.Module)
			writeName(&sec, imp.Name)
			sec.WriteByte(imp.Kind)
			switch imp.Kind {
			case kindFunc:
				writeULEB(&sec, 0) // type index
			case kindMemory:
				writeLimits(&sec, imp.Mem)
			}
		}
		writeSection(&out, secImport, sec.Bytes())
	}

	// Function section
	if len(m.bodies) > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, uint64(len(m.bodies)))
		for range m.bodies {
			writeULEB(&sec, 0)
		}
		writeSection(&out, secFunction, sec.Bytes())
	}

	// Table section
	if m.hasTable {
		var sec bytes.Buffer
		writeULEB(&sec, 1)
		sec.WriteByte(funcRefByte)
		sec.WriteByte(0x00) // no max
		writeULEB(&sec, uint64(m.tableMin))
		writeSection(&out, secTable, sec.Bytes())
	}

	// Memory section
	if len(m.memories) > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, uint64(len(m.memories)))
		for _, mem := range m.memories {
			writeLimits(&sec, mem)
		}
		writeSection(&out, secMemory, sec.Bytes())
	}

	// Export section
	if len(m.exports) > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, uint64(len(m.exports)))
		for _, exp := range m.exports {
			writeName(&sec, exp.Name)
			sec.WriteByte(exp.Kind)
			writeULEB(&sec, uint64(exp.Idx))
		}
		writeSection(&out, secExport, sec.Bytes())
	}

	// Code section
	if len(m.bodies) > 0 {
		var sec bytes.Buffer
		writeULEB(&sec, uint64(len(m.bodies)))
		for _, body := range m.bodies {
			var fn bytes.Buffer
			writeULEB(&fn, 0) // no locals
			fn.Write(body)
			writeULEB(&sec, uint64(fn.Len()))
			sec.Write(fn.Bytes())
		}
		writeSection(&out, secCode, sec.Bytes())
	}

	return out.Bytes()
}

func writeSection(out *bytes.Buffer, id byte, data []byte) {
	out.WriteByte(id)
	writeULEB(out, uint64(len(data)))
	out.Write(data)
}

func writeLimits(out *bytes.Buffer, mem Memory) {
	if mem.Max >= 0 {
		out.WriteByte(0x01)
		writeULEB(out, uint64(mem.Min))
		writeULEB(out, uint64(mem.Max))
	} else {
		out.WriteByte(0x00)
		writeULEB(out, uint64(mem.Min))
	}
}

func writeName(out *bytes.Buffer, s string) {
	writeULEB(out, uint64(len(s)))
	out.WriteString(s)
}

func writeULEB(out *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

func writeSLEB(out *bytes.Buffer, v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			out.WriteByte(b)
			return
		}
		out.WriteByte(b | 0x80)
	}
}
