package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which pipeline stage produced the error
type Phase string

const (
	PhaseLoad  Phase = "load"  // artifact loading
	PhaseParse Phase = "parse" // module structure parsing
	PhaseScan  Phase = "scan"  // function body scanning
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindPermissionDenied  Kind = "permission_denied"
	KindIOFailure         Kind = "io_failure"
	KindTooLarge          Kind = "too_large"
	KindInvalidMagic      Kind = "invalid_magic"
	KindInvalidVersion    Kind = "invalid_version"
	KindTruncated         Kind = "truncated"
	KindMalformedLEB128   Kind = "malformed_leb128"
	KindMalformedLimits   Kind = "malformed_limits"
	KindMalformedSection  Kind = "malformed_section"
	KindUnsupportedOpcode Kind = "unsupported_opcode"
	KindInternal          Kind = "internal"
)

// Error is the structured error type used throughout the analyzer
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the section/field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// IO creates a loader error from an underlying filesystem failure
func IO(kind Kind, path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   kind,
		Path:   []string{path},
		Cause:  cause,
		Detail: "artifact read failed",
	}
}

// TooLarge creates an oversize-artifact error
func TooLarge(path string, size, limit int64) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindTooLarge,
		Path:   []string{path},
		Detail: fmt.Sprintf("artifact is %d bytes, limit %d", size, limit),
	}
}

// Truncated creates a parse error for an input that ended mid-structure
func Truncated(section string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindTruncated,
		Path:   []string{section},
		Cause:  cause,
		Detail: "input ended inside structure",
	}
}

// Malformed creates a parse error for a structurally invalid section
func Malformed(section string, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformedSection,
		Path:   []string{section},
		Detail: fmt.Sprintf(detail, args...),
	}
}

// UnsupportedOpcode creates a scanner error for an opcode outside the decode tables
func UnsupportedOpcode(opcode byte, sub uint32) *Error {
	detail := fmt.Sprintf("opcode 0x%02x", opcode)
	if sub != 0 {
		detail = fmt.Sprintf("opcode 0x%02x sub-opcode 0x%02x", opcode, sub)
	}
	return &Error{
		Phase:  PhaseScan,
		Kind:   KindUnsupportedOpcode,
		Detail: detail,
	}
}

// Internal creates an invariant-violation error; these indicate programmer bugs
func Internal(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(detail, args...),
	}
}
