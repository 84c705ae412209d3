package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Phase:  PhaseImport,
		Kind:   KindMissingExport,
		Detail: "Global variable 'counter', imported into module 'main', was not exported in the module 'env'.",
	}
	if err.Error() != err.Detail {
		t.Errorf("Error() = %q, want verbatim Detail %q", err.Error(), err.Detail)
	}

	bare := &Error{Phase: PhaseLink, Kind: KindCycle}
	if bare.Error() != string(KindCycle) {
		t.Errorf("Error() with empty Detail = %q, want %q", bare.Error(), KindCycle)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Phase: PhaseLink, Kind: KindMissingModule, Cause: cause}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseImport, Kind: KindTypeMismatch}

	if !err.Is(&Error{Phase: PhaseImport, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseLink, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseImport, Kind: KindSizeOverflow}) {
		t.Error("Is should not match different kind")
	}
	if !err.Is(&Error{Kind: KindTypeMismatch}) {
		t.Error("Is should match on Kind alone when target Phase is zero")
	}

	target := &Error{Phase: PhaseImport, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseReset, KindMissingMemoryForData).
		Detail("Data segment %d in module '%s' has no memory to initialize.", 2, "main").
		Cause(cause).
		Build()

	if err.Phase != PhaseReset {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseReset)
	}
	if err.Kind != KindMissingMemoryForData {
		t.Errorf("Kind = %v, want %v", err.Kind, KindMissingMemoryForData)
	}
	want := "Data segment 2 in module 'main' has no memory to initialize."
	if err.Detail != want {
		t.Errorf("Detail = %q, want %q", err.Detail, want)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestBuilderDetailWithoutArgs(t *testing.T) {
	err := New(PhaseImport, KindDeferredNotImplemented).
		Detail("Postponed table resolution not implemented.").
		Build()
	want := "Postponed table resolution not implemented."
	if err.Detail != want {
		t.Errorf("Detail = %q, want %q", err.Detail, want)
	}
}
