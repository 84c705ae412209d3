// Package errors provides the structured error type the linker uses for
// every diagnostic it produces.
//
// Errors are categorized by Phase (which public operation produced them) and
// Kind (the sub-category from the linker's error taxonomy: missing module,
// missing export, name mismatch, type mismatch, mutability mismatch, size
// overflow, missing memory for data, address validation, cycle, and
// deferred-resolution-not-implemented). Unlike a typical bracketed
// "[phase] kind: detail" renderer, Error() returns the Detail verbatim --
// the linker's diagnostics are specified as exact, single-line, human
// readable sentences, and decorating them would break that contract.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseImport, errors.KindMissingExport).
//		Detail("Global variable '%s', imported into module '%s', was not exported in the module '%s'.", name, importer, exporter).
//		Build()
//
// Or one of the convenience constructors in linker/errors.go, which know the
// exact wording for each diagnostic category.
package errors
