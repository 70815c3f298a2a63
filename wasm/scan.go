package wasm

import (
	"fmt"

	sebierrors "github.com/0xphen/sebi/errors"
	"github.com/0xphen/sebi/wasm/internal/binary"
)

// bodyCounts accumulates instruction occurrences for one function body.
type bodyCounts struct {
	loops         uint64
	memoryGrows   uint64
	callIndirects uint64
}

// scanBody walks one function body (locals header followed by an
// instruction sequence terminated by end) in a single pass.
//
// The walker decodes every opcode far enough to advance past its
// immediates; it never interprets semantics. Block nesting is tracked as a
// depth counter so the outer end is distinguishable from inner ends.
// Unreachable code still contributes: no reachability analysis happens here.
func scanBody(body []byte) (bodyCounts, error) {
	r := binary.NewReader(body)
	var counts bodyCounts

	if err := skipLocals(r); err != nil {
		return bodyCounts{}, fmt.Errorf("locals header: %w", err)
	}

	depth := 0
	for {
		op, err := r.ReadByte()
		if err != nil {
			return bodyCounts{}, sebierrors.Truncated("function body", err)
		}

		switch op {
		case OpLoop:
			counts.loops++
		case OpMemoryGrow:
			counts.memoryGrows++
		case OpCallIndirect:
			counts.callIndirects++
		case OpEnd:
			if depth == 0 {
				if r.Remaining() != 0 {
					return bodyCounts{}, sebierrors.Malformed("function body",
						"%d trailing bytes after final end", r.Remaining())
				}
				return counts, nil
			}
			depth--
			continue
		}

		switch op {
		case OpBlock, OpLoop, OpIf, OpTry:
			depth++
		case OpTryTable:
			depth++
		case OpDelegate:
			// delegate closes its try block in place of end
			if depth > 0 {
				depth--
			}
		}

		if err := skipImmediates(r, op); err != nil {
			return bodyCounts{}, err
		}
	}
}

// skipLocals consumes the locals vector at the start of a function body.
func skipLocals(r *binary.Reader) error {
	groups, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < groups; i++ {
		if _, err := r.ReadU32(); err != nil {
			return err
		}
		t, err := r.ReadByte()
		if err != nil {
			return err
		}
		if t == ValRefNull || t == ValRef {
			if _, err := r.ReadS33(); err != nil {
				return err
			}
		}
	}
	return nil
}

// skipImmediates advances the cursor past the immediates of op.
// Opcodes outside the decode tables return an unsupported_opcode error so
// the caller can discard the body and degrade analysis status.
func skipImmediates(r *binary.Reader, op byte) error {
	switch {
	case op == OpBlock || op == OpLoop || op == OpIf || op == OpTry:
		// Block type: s33 (negative for value types, index otherwise)
		_, err := r.ReadS33()
		return err

	case op == OpUnreachable, op == OpNop, op == OpElse, op == OpEnd,
		op == OpReturn, op == OpDrop, op == OpSelect,
		op == OpThrowRef, op == OpCatchAll,
		op == OpRefIsNull, op == OpRefAsNonNull, op == OpRefEq:
		return nil

	case op >= OpI32Eqz && op <= OpI64Extend32S:
		// Comparisons, arithmetic, conversions, sign extension: no immediates
		return nil

	case op == OpBr || op == OpBrIf || op == OpRethrow || op == OpDelegate ||
		op == OpBrOnNull || op == OpBrOnNonNull:
		return r.SkipLEB128()

	case op == OpBrTable:
		count, err := r.ReadU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i <= count; i++ { // labels plus default
			if err := r.SkipLEB128(); err != nil {
				return err
			}
		}
		return nil

	case op == OpCall || op == OpReturnCall || op == OpCallRef || op == OpReturnCallRef ||
		op == OpCatch || op == OpThrow || op == OpRefFunc:
		return r.SkipLEB128()

	case op == OpCallIndirect || op == OpReturnCallIndirect:
		// Type index, then table index
		if err := r.SkipLEB128(); err != nil {
			return err
		}
		return r.SkipLEB128()

	case op == OpTryTable:
		return skipTryTable(r)

	case op >= OpLocalGet && op <= OpTableSet:
		return r.SkipLEB128()

	case op >= OpI32Load && op <= OpI64Store32:
		return skipMemArg(r)

	case op == OpMemorySize || op == OpMemoryGrow:
		return r.SkipLEB128()

	case op == OpI32Const || op == OpI64Const:
		return r.SkipLEB128()

	case op == OpF32Const:
		_, err := r.ReadBytes(4)
		return err

	case op == OpF64Const:
		_, err := r.ReadBytes(8)
		return err

	case op == OpRefNull:
		_, err := r.ReadS33()
		return err

	case op == OpSelectType:
		count, err := r.ReadU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			t, err := r.ReadByte()
			if err != nil {
				return err
			}
			if t == ValRefNull || t == ValRef {
				if _, err := r.ReadS33(); err != nil {
					return err
				}
			}
		}
		return nil

	case op == OpPrefixMisc:
		return skipMiscImmediates(r)

	case op == OpPrefixSIMD:
		return skipSIMDImmediates(r)

	case op == OpPrefixAtomic:
		return skipAtomicImmediates(r)

	case op == OpPrefixGC:
		return skipGCImmediates(r)

	default:
		return sebierrors.UnsupportedOpcode(op, 0)
	}
}

// skipMemArg consumes a memarg: alignment (bit 6 selects multi-memory),
// optional memory index, offset.
func skipMemArg(r *binary.Reader) error {
	const multiMemBit = 0x40
	align, err := r.ReadU32()
	if err != nil {
		return err
	}
	if align&multiMemBit != 0 {
		if err := r.SkipLEB128(); err != nil {
			return err
		}
	}
	return r.SkipLEB128()
}

func skipTryTable(r *binary.Reader) error {
	// Block type, then catch clauses
	if _, err := r.ReadS33(); err != nil {
		return err
	}
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind == 0x00 || kind == 0x01 { // catch, catch_ref carry a tag index
			if err := r.SkipLEB128(); err != nil {
				return err
			}
		}
		if err := r.SkipLEB128(); err != nil { // label index
			return err
		}
	}
	return nil
}

func skipMiscImmediates(r *binary.Reader) error {
	subOp, err := r.ReadU32()
	if err != nil {
		return err
	}
	switch subOp {
	case MiscMemoryInit, MiscMemoryCopy, MiscTableInit, MiscTableCopy:
		// Two indices
		if err := r.SkipLEB128(); err != nil {
			return err
		}
		return r.SkipLEB128()
	case MiscDataDrop, MiscMemoryFill, MiscElemDrop,
		MiscTableGrow, MiscTableSize, MiscTableFill, MiscMemoryDiscard:
		return r.SkipLEB128()
	default:
		if subOp <= MiscI64TruncSatF64U {
			// Saturating truncations: no immediates
			return nil
		}
		return sebierrors.UnsupportedOpcode(OpPrefixMisc, subOp)
	}
}

func skipSIMDImmediates(r *binary.Reader) error {
	subOp, err := r.ReadU32()
	if err != nil {
		return err
	}

	switch {
	case subOp <= SimdV128Load64Splat || subOp == SimdV128Store ||
		subOp == SimdV128Load32Zero || subOp == SimdV128Load64Zero:
		return skipMemArg(r)

	case subOp == SimdV128Const || subOp == SimdI8x16Shuffle:
		_, err := r.ReadBytes(16)
		return err

	case subOp >= SimdI8x16ExtractLaneS && subOp <= SimdF64x2ReplaceLane:
		_, err := r.ReadByte() // lane index
		return err

	case subOp >= SimdV128Load8Lane && subOp <= SimdV128Store64Lane:
		if err := skipMemArg(r); err != nil {
			return err
		}
		_, err := r.ReadByte() // lane index
		return err

	case subOp <= SimdMaxSubOpcode:
		// Remaining vector operations carry no immediates
		return nil

	default:
		return sebierrors.UnsupportedOpcode(OpPrefixSIMD, subOp)
	}
}

func skipAtomicImmediates(r *binary.Reader) error {
	subOp, err := r.ReadU32()
	if err != nil {
		return err
	}
	if subOp > AtomicMaxSubOpcode {
		return sebierrors.UnsupportedOpcode(OpPrefixAtomic, subOp)
	}
	if subOp == AtomicFence {
		// Single reserved byte
		_, err := r.ReadByte()
		return err
	}
	return skipMemArg(r)
}

func skipGCImmediates(r *binary.Reader) error {
	subOp, err := r.ReadU32()
	if err != nil {
		return err
	}

	switch subOp {
	case GCStructNew, GCStructNewDefault,
		GCArrayNew, GCArrayNewDefault, GCArrayGet, GCArrayGetS, GCArrayGetU,
		GCArraySet, GCArrayFill:
		return r.SkipLEB128()

	case GCStructGet, GCStructGetS, GCStructGetU, GCStructSet,
		GCArrayNewFixed, GCArrayNewData, GCArrayNewElem,
		GCArrayInitData, GCArrayInitElem, GCArrayCopy:
		if err := r.SkipLEB128(); err != nil {
			return err
		}
		return r.SkipLEB128()

	case GCRefTest, GCRefTestNull, GCRefCast, GCRefCastNull:
		_, err := r.ReadS33()
		return err

	case GCBrOnCast, GCBrOnCastFail:
		// Cast flags, label index, two heap types
		if _, err := r.ReadByte(); err != nil {
			return err
		}
		if err := r.SkipLEB128(); err != nil {
			return err
		}
		if _, err := r.ReadS33(); err != nil {
			return err
		}
		_, err := r.ReadS33()
		return err

	case GCArrayLen, GCAnyConvertExtern, GCExternConvertAny,
		GCRefI31, GCI31GetS, GCI31GetU:
		return nil

	default:
		return sebierrors.UnsupportedOpcode(OpPrefixGC, subOp)
	}
}
