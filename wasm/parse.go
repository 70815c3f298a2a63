package wasm

import (
	stderrors "errors"
	"fmt"

	sebierrors "github.com/0xphen/sebi/errors"
	"github.com/0xphen/sebi/wasm/internal/binary"
)

// Parsing errors surfaced in parse_error diagnostics.
var (
	ErrInvalidMagic   = stderrors.New("invalid wasm magic number")
	ErrInvalidVersion = stderrors.New("invalid wasm version")
)

// Parse walks a WebAssembly binary and extracts RawFacts.
//
// Malformed input never returns a Go error: it degrades Result.Status to
// parse_error, zeroes the facts, and records a diagnostic warning, so that
// callers can still emit a report carrying tool identity and the artifact
// digest. A function body using an opcode outside the decode tables degrades
// to unsupported and drops only that body's contributions.
func Parse(data []byte) *Result {
	res := &Result{Status: StatusOK}

	if err := parseModule(binary.NewReader(data), res); err != nil {
		return &Result{
			Status:   StatusParseError,
			Warnings: []string{fmt.Sprintf("parse error: %v", err)},
		}
	}

	// Post-parse normalization: annotate unconventional module shapes
	// without interpreting risk.
	if len(res.Facts.Memories) == 0 {
		res.warn("no memory section or imported memory detected")
	}

	return res
}

func parseModule(r *binary.Reader, res *Result) error {
	magic, err := r.ReadU32LE()
	if err != nil {
		return ErrInvalidMagic
	}
	if magic != Magic {
		return ErrInvalidMagic
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return ErrInvalidVersion
	}
	if version != Version {
		return ErrInvalidVersion
	}

	// Track section ordering using canonical order, not section IDs.
	// Spec order: Type(1), Import(2), Function(3), Table(4), Memory(5),
	// Tag(13), Global(6), Export(7), Start(8), Element(9), DataCount(12),
	// Code(10), Data(11). Custom sections can appear anywhere.
	var lastSectionOrder int

	for r.Remaining() > 0 {
		sectionID, err := r.ReadByte()
		if err != nil {
			return sebierrors.Truncated("section header", err)
		}

		if sectionID != SectionCustom && sectionID <= SectionTag {
			order := sectionOrder(sectionID)
			if order <= lastSectionOrder {
				return sebierrors.Malformed("module", "section %d appears out of order", sectionID)
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return sebierrors.Truncated("section size", err)
		}
		sectionData, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return sebierrors.Truncated("section data", err)
		}

		res.Facts.SectionCount++

		sr := binary.NewReader(sectionData)
		switch sectionID {
		case SectionImport:
			if err := parseImportSection(sr, &res.Facts); err != nil {
				return fmt.Errorf("import section: %w", err)
			}
		case SectionFunction:
			if err := parseFunctionSection(sr, &res.Facts); err != nil {
				return fmt.Errorf("function section: %w", err)
			}
		case SectionMemory:
			if err := parseMemorySection(sr, &res.Facts); err != nil {
				return fmt.Errorf("memory section: %w", err)
			}
		case SectionExport:
			if err := parseExportSection(sr, &res.Facts); err != nil {
				return fmt.Errorf("export section: %w", err)
			}
		case SectionCode:
			if err := parseCodeSection(sr, res); err != nil {
				return fmt.Errorf("code section: %w", err)
			}
		default:
			// Type, table, global, start, element, data, data count, tag,
			// custom, and any unknown sections contribute no signals beyond
			// the section count. Their payloads were fully consumed above.
		}
	}

	return nil
}

// sectionOrder returns the canonical ordering for a section ID.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6 // Tag comes after Memory, before Global
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11 // DataCount must come before Code
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 100
	}
}

func parseImportSection(r *binary.Reader, facts *RawFacts) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return err
		}
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}

		switch kind {
		case KindFunc:
			if _, err := r.ReadU32(); err != nil {
				return err
			}
		case KindTable:
			if err := skipTableType(r); err != nil {
				return err
			}
		case KindMemory:
			limits, err := readLimits(r)
			if err != nil {
				return err
			}
			facts.Memories = append(facts.Memories, MemoryFact{
				MinPages: limits.min,
				MaxPages: limits.max,
				Source:   MemoryImported,
			})
		case KindGlobal:
			if err := skipGlobalType(r); err != nil {
				return err
			}
		case KindTag:
			if err := skipTagType(r); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown import kind: %d", kind)
		}

		facts.Imports = append(facts.Imports, ImportFact{
			Module: module,
			Name:   name,
			Kind:   ExternKind(kind),
		})
	}
	return nil
}

func parseFunctionSection(r *binary.Reader, facts *RawFacts) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := r.ReadU32(); err != nil {
			return err
		}
	}
	// Defined functions only; imported functions are counted nowhere here,
	// matching the WebAssembly convention for "function count".
	facts.FunctionCount = count
	return nil
}

func parseMemorySection(r *binary.Reader, facts *RawFacts) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		limits, err := readLimits(r)
		if err != nil {
			return err
		}
		facts.Memories = append(facts.Memories, MemoryFact{
			MinPages: limits.min,
			MaxPages: limits.max,
			Source:   MemoryDeclared,
		})
	}
	return nil
}

func parseExportSection(r *binary.Reader, facts *RawFacts) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind > KindTag {
			return fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		if _, err := r.ReadU32(); err != nil {
			return err
		}
		facts.Exports = append(facts.Exports, ExportFact{
			Name: name,
			Kind: ExternKind(kind),
		})
	}
	return nil
}

func parseCodeSection(r *binary.Reader, res *Result) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		bodySize, err := r.ReadU32()
		if err != nil {
			return err
		}
		bodyData, err := r.ReadBytes(int(bodySize))
		if err != nil {
			return err
		}

		counts, err := scanBody(bodyData)
		if err != nil {
			var serr *sebierrors.Error
			if stderrors.As(err, &serr) && serr.Kind == sebierrors.KindUnsupportedOpcode {
				// The cursor may be out of sync past the unknown opcode:
				// drop this body's contributions, keep everything else.
				res.degrade(StatusUnsupported)
				res.warn(fmt.Sprintf("function body %d skipped: %v", i, err))
				continue
			}
			return fmt.Errorf("function body %d: %w", i, err)
		}

		res.Facts.LoopCount += counts.loops
		res.Facts.MemoryGrowCount += counts.memoryGrows
		res.Facts.CallIndirectCount += counts.callIndirects
	}
	return nil
}

// limits is the decoded form of the binary (flags, min, max?) encoding.
type limits struct {
	max *uint64
	min uint64
}

// readLimits decodes memory/table limits. Max presence is derived strictly
// from the flags bit, never from sentinel values.
func readLimits(r *binary.Reader) (limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return limits{}, err
	}

	var l limits
	if flags&LimitsMemory64 != 0 {
		l.min, err = r.ReadU64()
		if err != nil {
			return limits{}, err
		}
		if flags&LimitsHasMax != 0 {
			maxVal, err := r.ReadU64()
			if err != nil {
				return limits{}, err
			}
			l.max = &maxVal
		}
	} else {
		minVal, err := r.ReadU32()
		if err != nil {
			return limits{}, err
		}
		l.min = uint64(minVal)
		if flags&LimitsHasMax != 0 {
			maxVal, err := r.ReadU32()
			if err != nil {
				return limits{}, err
			}
			max64 := uint64(maxVal)
			l.max = &max64
		}
	}

	if l.max != nil && l.min > *l.max {
		return limits{}, sebierrors.New(sebierrors.PhaseParse, sebierrors.KindMalformedLimits).
			Detail("limits min (%d) exceeds max (%d)", l.min, *l.max).
			Build()
	}

	return l, nil
}

func skipTableType(r *binary.Reader) error {
	elemType, err := r.ReadByte()
	if err != nil {
		return err
	}
	if elemType == ValRefNull || elemType == ValRef {
		if _, err := r.ReadS33(); err != nil {
			return err
		}
	}
	_, err = readLimits(r)
	return err
}

func skipGlobalType(r *binary.Reader) error {
	valType, err := r.ReadByte()
	if err != nil {
		return err
	}
	if valType == ValRefNull || valType == ValRef {
		if _, err := r.ReadS33(); err != nil {
			return err
		}
	}
	// Mutability flag
	if _, err := r.ReadByte(); err != nil {
		return err
	}
	return nil
}

func skipTagType(r *binary.Reader) error {
	// Attribute byte followed by a type index
	if _, err := r.ReadByte(); err != nil {
		return err
	}
	if _, err := r.ReadU32(); err != nil {
		return err
	}
	return nil
}
