// Package errors provides structured error types for the SEBI analyzer.
//
// Errors are categorized by Phase (which pipeline stage failed) and Kind
// (error category). The Error type carries a section/file path and a cause
// chain so CLI output can say exactly where a binary went wrong.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindMalformedLimits).
//		Path("memory section").
//		Detail("limits min (%d) exceeds max (%d)", min, max).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated("import section", io.ErrUnexpectedEOF)
//	err := errors.TooLarge(path, size, limit)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
