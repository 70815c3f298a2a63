package wasm

// MemorySource records whether a memory was declared in the module or
// imported from the host.
type MemorySource string

const (
	MemoryDeclared MemorySource = "declared"
	MemoryImported MemorySource = "imported"
)

// ExternKind identifies the kind of an imported or exported item.
type ExternKind byte

// Extern kinds mirror the binary descriptor kinds.
const (
	ExternFunc   ExternKind = ExternKind(KindFunc)
	ExternTable  ExternKind = ExternKind(KindTable)
	ExternMemory ExternKind = ExternKind(KindMemory)
	ExternGlobal ExternKind = ExternKind(KindGlobal)
	ExternTag    ExternKind = ExternKind(KindTag)
)

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	case ExternTag:
		return "tag"
	default:
		return "unknown"
	}
}

// MemoryFact describes one linear memory in module order.
// MaxPages is nil when the limits carry no upper bound.
type MemoryFact struct {
	MaxPages *uint64
	MinPages uint64
	Source   MemorySource
}

// ImportFact records one import in module order.
type ImportFact struct {
	Module string
	Name   string
	Kind   ExternKind
}

// ExportFact records one export in module order.
type ExportFact struct {
	Name string
	Kind ExternKind
}

// RawFacts is the parser's output: pre-schema structural observations in
// module order. No policy or interpretation happens at this layer; the
// signals projector owns all normalization and sorting.
type RawFacts struct {
	Memories []MemoryFact
	Imports  []ImportFact
	Exports  []ExportFact

	FunctionCount uint32
	SectionCount  uint32

	MemoryGrowCount   uint64
	CallIndirectCount uint64
	LoopCount         uint64
}

// Status describes how completely a binary was parsed.
type Status string

const (
	StatusOK          Status = "ok"
	StatusParseError  Status = "parse_error"
	StatusUnsupported Status = "unsupported"
)

// Result bundles the extracted facts with the parse outcome.
// On StatusParseError the facts are conservatively zeroed: downstream
// stages still produce a report carrying tool identity and the digest.
type Result struct {
	Status   Status
	Warnings []string
	Facts    RawFacts
}

// degrade lowers the status, never raising it. parse_error dominates
// unsupported, which dominates ok.
func (r *Result) degrade(s Status) {
	switch {
	case r.Status == StatusParseError:
	case s == StatusParseError:
		r.Status = s
	case r.Status == StatusUnsupported:
	default:
		r.Status = s
	}
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
