package errors

import "fmt"

// Phase indicates which public linker operation produced the error.
type Phase string

const (
	PhaseImport Phase = "import" // importGlobal / importTable eager checks
	PhaseExport Phase = "export" // resolveFunctionExport / resolveMemoryExport registration
	PhaseLink   Phase = "link"   // tryLink: toposort, resolver actions, start functions
	PhaseReset  Phase = "reset"  // resetModuleState
)

// Kind categorizes the error by the sub-category the spec enumerates.
type Kind string

const (
	KindMissingModule          Kind = "missing_module"
	KindMissingExport          Kind = "missing_export"
	KindNameMismatch           Kind = "name_mismatch"
	KindNoExportOfKind         Kind = "no_export_of_kind"
	KindTypeMismatch           Kind = "type_mismatch"
	KindMutabilityMismatch     Kind = "mutability_mismatch"
	KindSizeOverflow           Kind = "size_overflow"
	KindMissingMemoryForData   Kind = "missing_memory_for_data"
	KindAddressValidation      Kind = "address_validation"
	KindCycle                  Kind = "cycle"
	KindDeferredNotImplemented Kind = "deferred_not_implemented"
)

// Error is the structured error type the linker returns. Error() returns
// Detail verbatim: the linker's diagnostics are specified as exact,
// single-line sentences, so Phase and Kind are metadata for callers doing
// errors.Is/As, not text baked into the message.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with a matching (non-empty) Kind
// and Phase. A target with a zero Phase or Kind matches any value of that
// field, so callers can match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return true
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Detail sets the human-readable, verbatim message.
func (b *Builder) Detail(format string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(format, args...)
	} else {
		b.err.Detail = format
	}
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}
